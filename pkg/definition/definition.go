// Package definition answers go-to-definition requests.
package definition

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

// Definition resolves the construct under offset to where it is defined.
func (p *Provider) Definition(ctx context.Context, tmpl *walker.Template, offset int) (position.Location, bool) {
	match := locator.Locate(tmpl.Doc, offset)
	if match == nil {
		zerolog.Ctx(ctx).Debug().Int("offset", offset).Msg("no definition target")
		return position.Location{}, false
	}
	zerolog.Ctx(ctx).Debug().Str("kind", string(match.Kind)).Str("name", match.Name).Msg("definition match")

	switch match.Kind {
	case pattern.KindExtends, pattern.KindInclude:
		path, ok := p.walker.Resolver().Resolve(ctx, match.Name, tmpl.Doc.URI())
		if !ok {
			return position.Location{}, false
		}
		return position.ZeroLocation(position.URIFromPath(path)), true

	case pattern.KindBlock:
		loc, _, ok := p.walker.FindBlockInAncestors(ctx, match.Name, tmpl)
		return loc, ok

	case pattern.KindBlockReference:
		return p.walker.FindBlockDefinition(ctx, match.Name, tmpl)

	case pattern.KindParentCall:
		if !match.HasBlockName {
			return position.Location{}, false
		}
		loc, _, ok := p.walker.FindBlockInAncestors(ctx, match.BlockName, tmpl)
		return loc, ok

	case pattern.KindVariable:
		return walker.FindVariableDefinition(match.Name, tmpl)
	}
	return position.Location{}, false
}
