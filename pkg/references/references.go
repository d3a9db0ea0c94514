// Package references answers find-references requests.
package references

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/twigls/pkg/locator"
	"github.com/walteh/twigls/pkg/pattern"
	"github.com/walteh/twigls/pkg/position"
	"github.com/walteh/twigls/pkg/walker"
)

type Provider struct {
	walker *walker.Walker
}

func NewProvider(w *walker.Walker) *Provider {
	return &Provider{walker: w}
}

// References lists every location related to the construct under offset.
// Template references are only searched when the name resolves.
func (p *Provider) References(ctx context.Context, tmpl *walker.Template, offset int) []position.Location {
	out := []position.Location{}

	match := locator.Locate(tmpl.Doc, offset)
	if match == nil {
		return out
	}

	switch match.Kind {
	case pattern.KindExtends, pattern.KindInclude:
		if path, ok := p.walker.Resolver().Resolve(ctx, match.Name, tmpl.Doc.URI()); ok {
			out = append(out, p.walker.ReferencesToTemplate(ctx, match.Name, path)...)
		}
	case pattern.KindBlock, pattern.KindBlockReference:
		out = append(out, p.walker.ReferencesToBlock(ctx, match.Name, tmpl)...)
	case pattern.KindVariable:
		out = append(out, walker.ReferencesToVariable(match.Name, tmpl)...)
	}

	zerolog.Ctx(ctx).Debug().Str("kind", string(match.Kind)).Str("name", match.Name).Int("count", len(out)).Msg("found references")
	return out
}
