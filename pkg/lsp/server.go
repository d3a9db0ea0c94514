package lsp

import (
	"context"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/twigls/pkg/config"
	"github.com/walteh/twigls/pkg/diagnostic"
	"github.com/walteh/twigls/pkg/finder"
	"github.com/walteh/twigls/pkg/lsp/protocol"
	"github.com/walteh/twigls/pkg/position"
	"github.com/walteh/twigls/pkg/resolver"
	"github.com/walteh/twigls/pkg/walker"
)

// Name is reported to clients in serverInfo.
const Name = "twigls"

// TriggerCharacters open the completion popup.
var TriggerCharacters = []string{"'", "\"", "/", "(", "{", "%", " "}

var _ protocol.Server = (*Server)(nil)

// Server represents an LSP server instance
type Server struct {
	id      string
	version string
	fs      afero.Fs

	documents *DocumentManager
	settings  *config.Store

	mu       sync.RWMutex
	root     string
	shutdown bool

	// notifier pushes diagnostics; nil until a transport is attached
	notifier protocol.Notifier
}

// NewServer creates a server over fs. root is the workspace used when the
// client does not send one.
func NewServer(fs afero.Fs, root string, settings config.Settings) *Server {
	return &Server{
		id:        uuid.NewString(),
		fs:        fs,
		root:      root,
		documents: NewDocumentManager(),
		settings:  config.NewStore(settings),
	}
}

func (s *Server) WithVersion(version string) *Server {
	s.version = version
	return s
}

func (s *Server) ID() string {
	return s.id
}

func (s *Server) Documents() *DocumentManager {
	return s.documents
}

func (s *Server) Settings() *config.Store {
	return s.settings
}

func (s *Server) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

func (s *Server) setRoot(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
}

func (s *Server) SetNotifier(n protocol.Notifier) {
	s.notifier = n
}

// BuildServerInstance wires the server into a jrpc2 server. Requests are
// handled one at a time.
func (s *Server) BuildServerInstance(ctx context.Context, opts *jrpc2.ServerOptions, logToClient bool) *protocol.ServerInstance {
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}
	opts.Concurrency = 1

	ctx = zerolog.Ctx(ctx).With().Str("server_id", s.id).Logger().WithContext(ctx)

	instance := protocol.NewServerInstance(ctx, s, opts, logToClient)
	s.SetNotifier(instance.Callback())
	return instance
}

// walker builds a walker for the current root and settings. Open documents
// take precedence over their on-disk contents.
func (s *Server) walker() *walker.Walker {
	settings := s.settings.Get()
	res := resolver.New(s.fs, s.Root(), settings.TemplateDirectories)
	return walker.New(res, finder.NewDefaultFinder(s.fs)).WithOverlay(s.documents.Overlay)
}

// template returns the scanned document for uri, falling back to disk for
// files the client has not opened.
func (s *Server) template(ctx context.Context, w *walker.Walker, uri protocol.DocumentURI) (*walker.Template, error) {
	if doc, ok := s.documents.Get(string(uri)); ok {
		return walker.FromDocument(doc.Content), nil
	}

	tmpl, err := w.Load(ctx, position.PathFromURI(string(uri)))
	if err != nil {
		return nil, errors.Errorf("document not found: %s: %w", uri, err)
	}
	return tmpl, nil
}

func (s *Server) publishDiagnostics(ctx context.Context, uri string) {
	if s.notifier == nil {
		return
	}

	params := &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri),
		Diagnostics: []protocol.Diagnostic{},
	}

	if doc, ok := s.documents.Get(uri); ok {
		w := s.walker()
		gen := diagnostic.NewDefaultGenerator(w, s.settings.Get().Diagnostics)
		params.Diagnostics = toDiagnostics(gen.Generate(ctx, walker.FromDocument(doc.Content)))
		version := doc.Version
		params.Version = &version
	}

	zerolog.Ctx(ctx).Debug().Str("uri", uri).Int("count", len(params.Diagnostics)).Msg("publishing diagnostics")

	if err := s.notifier.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("uri", uri).Msg("failed to publish diagnostics")
	}
}
