// Package walker answers questions that span several templates by following
// extends pointers and scanning the discovered template set.
package walker

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/twigls/pkg/finder"
	"github.com/walteh/twigls/pkg/position"
	"github.com/walteh/twigls/pkg/resolver"
	"github.com/walteh/twigls/pkg/scanner"
)

// MaxChainHops caps how many extends pointers a single walk follows.
const MaxChainHops = 64

// Overlay returns the editor's copy of a document when it has one.
type Overlay func(uri string) (position.Document, bool)

// Template is one scanned file.
type Template struct {
	// Name is the template name it was reached through, empty for the
	// starting document.
	Name  string
	Path  string
	Doc   position.Document
	Facts *scanner.FactSheet
}

type Walker struct {
	fs       afero.Fs
	resolver *resolver.Resolver
	finder   finder.TemplateFinder
	overlay  Overlay
}

func New(res *resolver.Resolver, find finder.TemplateFinder) *Walker {
	return &Walker{
		fs:       res.Fs(),
		resolver: res,
		finder:   find,
	}
}

// WithOverlay makes the walker prefer documents held by the editor over their
// on-disk contents.
func (w *Walker) WithOverlay(overlay Overlay) *Walker {
	cp := *w
	cp.overlay = overlay
	return &cp
}

func (w *Walker) Resolver() *resolver.Resolver {
	return w.resolver
}

// Templates lists every template file reachable from the configured
// directories and the workspace root.
func (w *Walker) Templates(ctx context.Context) []string {
	return finder.Discover(ctx, w.finder, w.resolver.Root(), w.resolver.TemplateDirectories())
}

// Load reads and scans the template at path.
func (w *Walker) Load(ctx context.Context, path string) (*Template, error) {
	uri := position.URIFromPath(path)
	if w.overlay != nil {
		if doc, ok := w.overlay(uri); ok {
			return &Template{Path: path, Doc: doc, Facts: scanner.Scan(doc)}, nil
		}
	}

	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return nil, errors.Errorf("reading template: %w", err)
	}
	doc := position.NewTextDocument(uri, string(data))
	return &Template{Path: path, Doc: doc, Facts: scanner.Scan(doc)}, nil
}

// FromDocument wraps an already open document.
func FromDocument(doc position.Document) *Template {
	return &Template{
		Path:  position.PathFromURI(doc.URI()),
		Doc:   doc,
		Facts: scanner.Scan(doc),
	}
}

// Ancestors returns the templates reached by following extends from start,
// nearest first. The walk stops at the first unresolvable or unreadable
// parent, at a path already visited, or after MaxChainHops.
func (w *Walker) Ancestors(ctx context.Context, start *Template) []*Template {
	visited := map[string]bool{start.Path: true}
	var out []*Template

	current := start
	for hops := 0; hops < MaxChainHops && current.Facts.HasExtends; hops++ {
		path, ok := w.resolver.Resolve(ctx, current.Facts.Extends, current.Doc.URI())
		if !ok || visited[path] {
			break
		}
		visited[path] = true

		parent, err := w.Load(ctx, path)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("skipping unreadable parent template")
			break
		}
		parent.Name = current.Facts.Extends
		out = append(out, parent)
		current = parent
	}
	return out
}

// FindBlockInAncestors looks for name in the extends chain above start,
// excluding start itself.
func (w *Walker) FindBlockInAncestors(ctx context.Context, name string, start *Template) (position.Location, *Template, bool) {
	for _, ancestor := range w.Ancestors(ctx, start) {
		if span, ok := ancestor.Facts.Blocks[name]; ok {
			return span.Location(ancestor.Doc), ancestor, true
		}
	}
	return position.Location{}, nil, false
}

// FindBlockDefinition looks for name in start and then along its whole
// extends chain.
func (w *Walker) FindBlockDefinition(ctx context.Context, name string, start *Template) (position.Location, bool) {
	if span, ok := start.Facts.Blocks[name]; ok {
		return span.Location(start.Doc), true
	}
	loc, _, ok := w.FindBlockInAncestors(ctx, name, start)
	return loc, ok
}

// FindBlockInTemplate returns the definition of name inside the file at path.
func (w *Walker) FindBlockInTemplate(ctx context.Context, path, name string) (position.Location, bool) {
	tmpl, err := w.Load(ctx, path)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("skipping unreadable template")
		return position.Location{}, false
	}
	span, ok := tmpl.Facts.Blocks[name]
	if !ok {
		return position.Location{}, false
	}
	return span.Location(tmpl.Doc), true
}

// BlocksAlongExtendsChain collects the distinct block names defined by the
// template called name and by every template it extends, nearest first.
func (w *Walker) BlocksAlongExtendsChain(ctx context.Context, name, referringURI string) []string {
	path, ok := w.resolver.Resolve(ctx, name, referringURI)
	if !ok {
		return nil
	}
	first, err := w.Load(ctx, path)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("skipping unreadable template")
		return nil
	}

	var blocks []string
	seen := make(map[string]bool)
	for _, tmpl := range append([]*Template{first}, w.Ancestors(ctx, first)...) {
		for _, block := range tmpl.Facts.BlockNames() {
			if !seen[block] {
				seen[block] = true
				blocks = append(blocks, block)
			}
		}
	}
	return blocks
}

// FindVariableDefinition returns the first same-file occurrence of name.
func FindVariableDefinition(name string, tmpl *Template) (position.Location, bool) {
	spans := tmpl.Facts.Variables[name]
	if len(spans) == 0 {
		return position.Location{}, false
	}
	return spans[0].Location(tmpl.Doc), true
}

// ReferencesToVariable returns every occurrence of name in tmpl only.
func ReferencesToVariable(name string, tmpl *Template) []position.Location {
	spans := tmpl.Facts.Variables[name]
	out := make([]position.Location, 0, len(spans))
	for _, span := range spans {
		out = append(out, span.Location(tmpl.Doc))
	}
	return out
}

// ReferencesToTemplate finds every extends and include of exactly name across
// the template set and finishes with the start of definitionPath itself.
func (w *Walker) ReferencesToTemplate(ctx context.Context, name, definitionPath string) []position.Location {
	var out []position.Location
	w.each(ctx, w.Templates(ctx), func(tmpl *Template) {
		for _, spans := range [][]position.Span{tmpl.Facts.ExtendsSpans, tmpl.Facts.IncludeSpans} {
			for _, span := range spans {
				if span.Text == name {
					out = append(out, span.Location(tmpl.Doc))
				}
			}
		}
	})
	if definitionPath != "" {
		out = append(out, position.ZeroLocation(position.URIFromPath(definitionPath)))
	}
	return out
}

// ReferencesToBlock unions the definition and block() calls of name in
// current with those in every other template, related by inheritance or not.
func (w *Walker) ReferencesToBlock(ctx context.Context, name string, current *Template) []position.Location {
	out := blockReferences(name, current)

	var others []string
	for _, path := range w.Templates(ctx) {
		if path != current.Path {
			others = append(others, path)
		}
	}
	w.each(ctx, others, func(tmpl *Template) {
		out = append(out, blockReferences(name, tmpl)...)
	})
	return out
}

func blockReferences(name string, tmpl *Template) []position.Location {
	var out []position.Location
	if span, ok := tmpl.Facts.Blocks[name]; ok {
		out = append(out, span.Location(tmpl.Doc))
	}
	for _, span := range tmpl.Facts.BlockReferences[name] {
		out = append(out, span.Location(tmpl.Doc))
	}
	return out
}

// each loads every path and hands the readable ones to fn. Read failures are
// collected and logged once.
func (w *Walker) each(ctx context.Context, paths []string, fn func(*Template)) {
	var errs *multierror.Error
	for _, path := range paths {
		tmpl, err := w.Load(ctx, path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		fn(tmpl)
	}
	if err := errs.ErrorOrNil(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int("skipped", errs.Len()).Msg("skipped unreadable templates")
	}
}
