package diagnostic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/walteh/twigls/pkg/config"
	"github.com/walteh/twigls/pkg/position"
	"github.com/walteh/twigls/pkg/walker"
)

// Source tags every diagnostic this package produces.
const Source = "twig"

// Generator is responsible for generating diagnostics for one template
type Generator interface {
	Generate(ctx context.Context, tmpl *walker.Template) []Diagnostic
}

// Diagnostic represents a single diagnostic message
type Diagnostic struct {
	Message  string         `json:"message" yaml:"message"`
	Severity Severity       `json:"severity" yaml:"severity"`
	Range    position.Range `json:"range" yaml:"range"`
	Source   string         `json:"source" yaml:"source"`
}

// DefaultGenerator checks template references against the workspace.
type DefaultGenerator struct {
	walker   *walker.Walker
	settings config.DiagnosticsSettings
}

func NewDefaultGenerator(w *walker.Walker, settings config.DiagnosticsSettings) *DefaultGenerator {
	return &DefaultGenerator{walker: w, settings: settings}
}

// Generate implements Generator. Unresolvable extends and include targets are
// errors, block() calls to blocks defined nowhere in the chain are warnings
// and unbalanced block tags produce one summary error.
func (g *DefaultGenerator) Generate(ctx context.Context, tmpl *walker.Template) []Diagnostic {
	if !g.settings.Enabled {
		return nil
	}

	out := make([]Diagnostic, 0)
	res := g.walker.Resolver()
	uri := tmpl.Doc.URI()

	for _, spans := range [][]position.Span{tmpl.Facts.ExtendsSpans, tmpl.Facts.IncludeSpans} {
		for _, span := range spans {
			if _, ok := res.Resolve(ctx, span.Text, uri); ok {
				continue
			}
			out = append(out, newDiagnostic(SeverityError, span.Range, "Template '%s' not found", span.Text))
		}
	}

	if names := tmpl.Facts.BlockReferenceNames(); len(names) > 0 {
		available := make(map[string]bool)
		for _, ancestor := range g.walker.Ancestors(ctx, tmpl) {
			for name := range ancestor.Facts.Blocks {
				available[name] = true
			}
		}
		for _, name := range names {
			if tmpl.Facts.HasBlock(name) || available[name] {
				continue
			}
			for _, span := range tmpl.Facts.BlockReferences[name] {
				out = append(out, newDiagnostic(SeverityWarning, span.Range, "Block '%s' is not defined", name))
			}
		}
	}

	if tmpl.Facts.BlockStarts != tmpl.Facts.BlockEnds {
		out = append(out, newDiagnostic(SeverityError, position.ZeroRange,
			"Mismatched block tags: %d block starts, %d block ends", tmpl.Facts.BlockStarts, tmpl.Facts.BlockEnds))
	}

	zerolog.Ctx(ctx).Debug().Str("uri", uri).Int("count", len(out)).Msg("generated diagnostics")
	return out
}

func newDiagnostic(severity Severity, rng position.Range, format string, args ...any) Diagnostic {
	return Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Severity: severity,
		Range:    rng,
		Source:   Source,
	}
}
