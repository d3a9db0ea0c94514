package lsp

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/twigls/pkg/config"
	"github.com/walteh/twigls/pkg/lsp/protocol"
	"github.com/walteh/twigls/pkg/position"
)

func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	logger := zerolog.Ctx(ctx)

	switch {
	case params.RootURI != "":
		s.setRoot(position.PathFromURI(string(params.RootURI)))
	case len(params.WorkspaceFolders) > 0:
		s.setRoot(position.PathFromURI(string(params.WorkspaceFolders[0].URI)))
	case params.RootPath != "":
		s.setRoot(position.PathFromURI(params.RootPath))
	}

	if len(params.InitializationOptions) > 0 {
		s.applySettings(ctx, params.InitializationOptions)
	}

	logger.Info().Str("root", s.Root()).Msg("initializing server")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.SyncFull,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
			HoverProvider:          true,
			DefinitionProvider:     true,
			ReferencesProvider:     true,
			DocumentSymbolProvider: true,
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: TriggerCharacters,
			},
		},
		ServerInfo: &protocol.ServerInfo{Name: Name, Version: s.version},
	}, nil
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	zerolog.Ctx(ctx).Debug().Msg("server initialized")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	zerolog.Ctx(ctx).Info().Msg("shutdown requested")
	return nil
}

func (s *Server) Exit(ctx context.Context) error {
	s.mu.RLock()
	clean := s.shutdown
	s.mu.RUnlock()

	zerolog.Ctx(ctx).Info().Bool("after_shutdown", clean).Msg("exiting")
	return nil
}

func (s *Server) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	s.applySettings(ctx, params.Settings)

	for _, uri := range s.openURIs() {
		s.publishDiagnostics(ctx, uri)
	}
	return nil
}

// applySettings replaces the settings wholesale. Fields that fail to decode
// keep their defaults.
func (s *Server) applySettings(ctx context.Context, payload []byte) {
	settings, err := config.Parse(payload)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("invalid settings, using defaults for bad fields")
	}
	s.settings.Set(settings)

	zerolog.Ctx(ctx).Debug().
		Str("path_resolution", string(settings.PathResolution)).
		Strs("template_directories", settings.TemplateDirectories).
		Bool("diagnostics", settings.Diagnostics.Enabled).
		Msg("settings updated")
}

func (s *Server) openURIs() []string {
	var out []string
	s.documents.store.Range(func(_, value any) bool {
		if doc, ok := value.(*Document); ok {
			out = append(out, doc.URI)
		}
		return true
	})
	return out
}
