// Package hover provides functionality for generating hover information.
package hover

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/walteh/twigls/pkg/locator"
	"github.com/walteh/twigls/pkg/pattern"
	"github.com/walteh/twigls/pkg/position"
	"github.com/walteh/twigls/pkg/walker"
)

// HoverInfo represents the information to be displayed in a hover tooltip
type HoverInfo struct {
	// Content holds markdown paragraphs
	Content []string
	// Range is the range in the document that this hover applies to
	Range position.Range
}

// Markdown joins the paragraphs into one markdown document.
func (h *HoverInfo) Markdown() string {
	return strings.Join(h.Content, "\n\n")
}

type Provider struct {
	walker *walker.Walker
}

func NewProvider(w *walker.Walker) *Provider {
	return &Provider{walker: w}
}

// Hover describes the construct under offset, or returns nil when there is
// none.
func (p *Provider) Hover(ctx context.Context, tmpl *walker.Template, offset int) *HoverInfo {
	match := locator.Locate(tmpl.Doc, offset)
	if match == nil {
		return nil
	}
	zerolog.Ctx(ctx).Debug().Str("kind", string(match.Kind)).Str("name", match.Name).Msg("hover match")

	var content []string
	switch match.Kind {
	case pattern.KindExtends:
		content = p.templateContent(ctx, tmpl, match.Name, "Extends Template", "Inherits from parent template.")
	case pattern.KindInclude:
		content = p.templateContent(ctx, tmpl, match.Name, "Include Template", "Includes the content of another template.")
	case pattern.KindBlock:
		content = []string{
			fmt.Sprintf("**Block**: `%s`", match.Name),
			"Defines a block that can be overridden in child templates.",
		}
		if _, ancestor, ok := p.walker.FindBlockInAncestors(ctx, match.Name, tmpl); ok {
			content = append(content, fmt.Sprintf("**Overrides block in**: `%s`", ancestor.Name))
		}
	case pattern.KindBlockReference:
		content = []string{
			fmt.Sprintf("**Block Reference**: `%s`", match.Name),
			"References a block defined in this template or parent templates.",
		}
	case pattern.KindParentCall:
		content = []string{
			"**Parent Call**",
			"Calls the parent template's version of the current block.",
		}
		if match.HasBlockName {
			content = append(content, fmt.Sprintf("**Current Block**: `%s`", match.BlockName))
		}
	case pattern.KindVariable:
		content = []string{fmt.Sprintf("**Variable**: `%s`", match.Name)}
		if n := len(tmpl.Facts.Variables[match.Name]); n > 0 {
			content = append(content, fmt.Sprintf("**Occurrences in template**: %d", n))
		}
	default:
		return nil
	}

	return &HoverInfo{Content: content, Range: match.Span.Range}
}

func (p *Provider) templateContent(ctx context.Context, tmpl *walker.Template, name, title, summary string) []string {
	content := []string{
		fmt.Sprintf("**%s**: `%s`", title, name),
		summary,
	}

	path, ok := p.walker.Resolver().Resolve(ctx, name, tmpl.Doc.URI())
	if !ok {
		return append(content, "**Path not found**")
	}
	content = append(content, fmt.Sprintf("**Resolved Path**: `%s`", path))

	preview := ReadPreview(p.walker.Resolver().Fs(), path)
	content = append(content, "**Template Preview:**\n```twig\n"+preview.Content+"\n```")
	return append(content, preview.Metadata)
}
