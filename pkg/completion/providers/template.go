package providers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/walteh/twigls/pkg/config"
	"github.com/walteh/twigls/pkg/walker"
)

// Proximity ranks used as the second sort key.
const (
	proximityNear  = "1"
	proximityTree  = "2"
	proximityOther = "3"
)

// TemplateProvider suggests template paths inside extends and include tags.
type TemplateProvider struct {
	walker *walker.Walker
}

func NewTemplateProvider(w *walker.Walker) *TemplateProvider {
	return &TemplateProvider{walker: w}
}

// GetCompletions lists every discovered template that matches input, labelled
// according to mode.
func (p *TemplateProvider) GetCompletions(ctx context.Context, tmpl *walker.Template, input string, mode config.PathResolution) []CompletionItem {
	root := p.walker.Resolver().Root()
	currentDir := filepath.Dir(tmpl.Path)
	currentTop := topLevel(root, currentDir)

	templates := p.walker.Templates(ctx)
	completions := make([]CompletionItem, 0, len(templates))
	for _, path := range templates {
		dir := filepath.Dir(path)
		top := topLevel(root, dir)
		filename := filepath.Base(path)

		var label, detail, proximity string
		switch mode {
		case config.PathResolutionAbsolute:
			label = rel(root, path)
			detail = fmt.Sprintf("Twig Template (%s)", orRoot(top))
			proximity = sameOrElse(dir == currentDir)
		case config.PathResolutionRelative:
			label = rel(currentDir, path)
			detail = "Twig Template (relative)"
			proximity = sameOrElse(dir == currentDir)
		default:
			switch {
			case dir == currentDir:
				label, detail, proximity = filename, "Twig Template (same directory)", proximityNear
			case currentTop != "" && top == currentTop:
				label, detail, proximity = rel(currentDir, path), fmt.Sprintf("Twig Template (%s)", top), proximityTree
			case top != "":
				label, detail, proximity = rel(root, path), fmt.Sprintf("Twig Template (%s)", top), proximityOther
			default:
				label, detail, proximity = filename, "Twig Template (root)", proximityNear
			}
		}

		score, ok := ScoreTemplate(filename, label, input)
		if !ok {
			continue
		}

		base := strings.TrimSuffix(filename, ".twig")
		completions = append(completions, CompletionItem{
			Label:         label,
			Kind:          KindFile,
			Detail:        detail,
			Documentation: fmt.Sprintf("Template file: `%s`", path),
			InsertText:    label,
			SortText:      fmt.Sprintf("%03d", 100-score) + proximity + label,
			FilterText:    label + " " + filename + " " + base,
		})
	}

	zerolog.Ctx(ctx).Debug().Int("templates", len(templates)).Int("matched", len(completions)).Str("input", input).Msg("template completions")
	return completions
}

func sameOrElse(same bool) string {
	if same {
		return proximityNear
	}
	return proximityTree
}

func rel(base, target string) string {
	r, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(r)
}

// topLevel is the first directory of dir below root, empty for root itself
// or anything outside it.
func topLevel(root, dir string) string {
	r := rel(root, dir)
	if r == "." || strings.HasPrefix(r, "../") || r == ".." {
		return ""
	}
	return strings.SplitN(r, "/", 2)[0]
}

func orRoot(top string) string {
	if top == "" {
		return "root"
	}
	return top
}
