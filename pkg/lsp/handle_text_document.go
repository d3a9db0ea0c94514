package lsp

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/twigls/pkg/lsp/protocol"
)

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	zerolog.Ctx(ctx).Debug().Str("uri", string(item.URI)).Msg("document opened")

	s.documents.Store(string(item.URI), item.LanguageID, item.Version, item.Text)
	s.publishDiagnostics(ctx, string(item.URI))
	return nil
}

// DidChange applies full-sync changes: the last change holds the whole text.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}

	uri := string(params.TextDocument.URI)
	languageID := ""
	if prev, ok := s.documents.Get(uri); ok {
		languageID = prev.LanguageID
	}

	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.documents.Store(uri, languageID, params.TextDocument.Version, text)
	s.publishDiagnostics(ctx, uri)
	return nil
}

func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if params.Text != nil {
		prev, ok := s.documents.Get(uri)
		if ok {
			s.documents.Store(uri, prev.LanguageID, prev.Version, *params.Text)
		} else {
			s.documents.Store(uri, "", 0, *params.Text)
		}
	}
	s.publishDiagnostics(ctx, uri)
	return nil
}

// DidClose forgets the document and clears its diagnostics.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.documents.Delete(uri)
	s.publishDiagnostics(ctx, uri)
	return nil
}
