// Package completion picks the completion context at a cursor and gathers
// suggestions from the matching provider.
package completion

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/twigls/pkg/completion/providers"
	"github.com/walteh/twigls/pkg/config"
	"github.com/walteh/twigls/pkg/position"
	"github.com/walteh/twigls/pkg/walker"
)

type Engine struct {
	templates *providers.TemplateProvider
	blocks    *providers.BlockProvider
	variables *providers.VariableProvider
	tags      *providers.TagProvider
}

func NewEngine(w *walker.Walker) *Engine {
	return &Engine{
		templates: providers.NewTemplateProvider(w),
		blocks:    providers.NewBlockProvider(w),
		variables: providers.NewVariableProvider(),
		tags:      providers.NewTagProvider(),
	}
}

// GetCompletions returns completion items for the given position
func (e *Engine) GetCompletions(ctx context.Context, tmpl *walker.Template, place position.Place, mode config.PathResolution) []providers.CompletionItem {
	cc := NewCompletionContext(tmpl.Doc, place)
	zerolog.Ctx(ctx).Debug().Str("context", cc.Kind.String()).Str("prefix", cc.LinePrefix).Msg("completion context")

	var items []providers.CompletionItem
	switch cc.Kind {
	case ContextTemplatePath:
		items = e.templates.GetCompletions(ctx, tmpl, cc.Partial, mode)
	case ContextBlockName:
		items = e.blocks.GetCompletions(ctx, tmpl)
	case ContextVariable:
		items = e.variables.GetCompletions(tmpl)
	case ContextTag:
		items = e.tags.GetCompletions()
	}
	if items == nil {
		items = []providers.CompletionItem{}
	}
	return items
}
