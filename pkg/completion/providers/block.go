package providers

import (
	"context"
	"fmt"

	"github.com/walteh/twigls/pkg/walker"
)

// BlockProvider handles block name completions inside block() calls
type BlockProvider struct {
	walker *walker.Walker
}

func NewBlockProvider(w *walker.Walker) *BlockProvider {
	return &BlockProvider{walker: w}
}

// GetCompletions returns the blocks of tmpl followed by those inherited along
// its extends chain.
func (p *BlockProvider) GetCompletions(ctx context.Context, tmpl *walker.Template) []CompletionItem {
	names := tmpl.Facts.BlockNames()
	if tmpl.Facts.HasExtends {
		names = append(names, p.walker.BlocksAlongExtendsChain(ctx, tmpl.Facts.Extends, tmpl.Doc.URI())...)
	}

	seen := make(map[string]bool, len(names))
	var completions []CompletionItem
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		completions = append(completions, CompletionItem{
			Label:         name,
			Kind:          KindProperty,
			Detail:        "Twig Block",
			Documentation: fmt.Sprintf("Block: `%s`", name),
			InsertText:    name,
		})
	}
	return completions
}
