package lsp

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/twigls/pkg/completion"
	"github.com/walteh/twigls/pkg/definition"
	"github.com/walteh/twigls/pkg/hover"
	"github.com/walteh/twigls/pkg/lsp/protocol"
	"github.com/walteh/twigls/pkg/references"
	"github.com/walteh/twigls/pkg/symbols"
)

func (s *Server) Definition(ctx context.Context, params *protocol.DefinitionParams) (*protocol.Location, error) {
	w := s.walker()
	tmpl, err := s.template(ctx, w, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	offset := tmpl.Doc.OffsetAt(toPlace(params.Position))
	loc, ok := definition.NewProvider(w).Definition(ctx, tmpl, offset)
	if !ok {
		zerolog.Ctx(ctx).Debug().Int("offset", offset).Msg("no definition")
		return nil, nil
	}

	out := toLocation(loc)
	return &out, nil
}

func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	w := s.walker()
	tmpl, err := s.template(ctx, w, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	info := hover.NewProvider(w).Hover(ctx, tmpl, tmpl.Doc.OffsetAt(toPlace(params.Position)))
	if info == nil {
		return nil, nil
	}
	return toHover(info), nil
}

func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	w := s.walker()
	tmpl, err := s.template(ctx, w, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	items := completion.NewEngine(w).GetCompletions(ctx, tmpl, toPlace(params.Position), s.settings.Get().PathResolution)

	zerolog.Ctx(ctx).Debug().Int("count", len(items)).Msg("completion items")

	return &protocol.CompletionList{Items: toCompletionItems(items)}, nil
}

func (s *Server) References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	w := s.walker()
	tmpl, err := s.template(ctx, w, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	locs := references.NewProvider(w).References(ctx, tmpl, tmpl.Doc.OffsetAt(toPlace(params.Position)))
	return toLocations(locs), nil
}

func (s *Server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]protocol.DocumentSymbol, error) {
	tmpl, err := s.template(ctx, s.walker(), params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return toDocumentSymbols(symbols.DocumentSymbols(tmpl)), nil
}
