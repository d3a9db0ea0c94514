// Package resolver maps a template name used inside a document to the file it
// names on disk.
package resolver

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/twigls/pkg/position"
)

// Extensions are the recognised template file suffixes.
var Extensions = []string{".twig", ".html.twig"}

// BuiltinDirectories are searched after the configured template directories.
var BuiltinDirectories = []string{
	"templates",
	"views",
	"src/templates",
	"app/Resources/views",
	"public/templates",
	"web/templates",
	"assets/templates",
}

const componentsPrefix = "components/"

type Resolver struct {
	fs   afero.Fs
	root string
	dirs []string
}

// New builds a resolver rooted at the workspace root. The configured template
// directories are searched before BuiltinDirectories.
func New(fs afero.Fs, root string, templateDirectories []string) *Resolver {
	return &Resolver{
		fs:   fs,
		root: root,
		dirs: dedupe(append(append([]string{}, templateDirectories...), BuiltinDirectories...)),
	}
}

func (r *Resolver) Root() string {
	return r.root
}

// Fs is the filesystem the resolver probes.
func (r *Resolver) Fs() afero.Fs {
	return r.fs
}

// TemplateDirectories returns the directories searched below the root, in order.
func (r *Resolver) TemplateDirectories() []string {
	return append([]string{}, r.dirs...)
}

// Resolve returns the absolute path of the first candidate that exists as a
// regular file. Filesystem errors count as a miss.
func (r *Resolver) Resolve(ctx context.Context, name, referringURI string) (string, bool) {
	for _, candidate := range r.Candidates(name, referringURI) {
		info, err := r.fs.Stat(candidate)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			zerolog.Ctx(ctx).Trace().Str("template", name).Str("path", candidate).Msg("resolved template")
			return candidate, true
		}
	}
	zerolog.Ctx(ctx).Debug().Str("template", name).Str("from", referringURI).Msg("template not found")
	return "", false
}

// Candidates lists every path Resolve will try, in order. Paths without a
// recognised extension are followed by their .twig and .html.twig variants.
func (r *Resolver) Candidates(name, referringURI string) []string {
	currentDir := filepath.Dir(position.PathFromURI(referringURI))

	var bases []string
	if strings.HasPrefix(name, componentsPrefix) {
		if filepath.Base(currentDir) == "components" {
			bases = append(bases, join(currentDir, strings.TrimPrefix(name, componentsPrefix)))
		}
		bases = append(bases, join(filepath.Dir(currentDir), name))
	}

	bases = append(bases, join(currentDir, name))
	if r.root != "" {
		bases = append(bases, join(r.root, name))
		bases = append(bases, join(r.root, "examples", name))
		for _, dir := range r.dirs {
			bases = append(bases, join(r.root, dir, name))
		}
	}

	out := make([]string, 0, len(bases)*3)
	seen := make(map[string]bool, len(bases)*3)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, base := range bases {
		add(base)
		if !HasTemplateExtension(base) {
			for _, ext := range Extensions {
				add(base + ext)
			}
		}
	}
	return out
}

// HasTemplateExtension reports whether path ends in a recognised suffix.
func HasTemplateExtension(path string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func join(base string, elem ...string) string {
	last := elem[len(elem)-1]
	if filepath.IsAbs(last) {
		return filepath.Clean(last)
	}
	return filepath.Join(append([]string{base}, elem...)...)
}

func dedupe(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	seen := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		clean := filepath.Clean(dir)
		if dir == "" || seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, clean)
	}
	return out
}
