package finder

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// DefaultExtensions are used when FindTemplates is given none.
var DefaultExtensions = []string{".twig", ".html.twig"}

// DefaultMaxDepth bounds how many directory levels below the search root are
// visited.
const DefaultMaxDepth = 32

var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// TemplateFinder is responsible for finding template files in a directory
type TemplateFinder interface {
	// FindTemplates finds all template files in a directory that match the given extensions
	FindTemplates(ctx context.Context, dir string, extensions []string) ([]string, error)
}

// DefaultFinder walks an afero filesystem.
type DefaultFinder struct {
	fs       afero.Fs
	maxDepth int
}

func NewDefaultFinder(fs afero.Fs) *DefaultFinder {
	return &DefaultFinder{fs: fs, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth returns a copy of f that stops descending after depth levels.
func (f *DefaultFinder) WithMaxDepth(depth int) *DefaultFinder {
	return &DefaultFinder{fs: f.fs, maxDepth: depth}
}

// FindTemplates implements TemplateFinder. Unreadable subdirectories are
// skipped and reported through the returned error alongside the files that
// were found; a missing or unreadable dir is an error with no files.
func (f *DefaultFinder) FindTemplates(ctx context.Context, dir string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	globs := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		globs = append(globs, "**/*"+ext)
	}

	info, err := f.fs.Stat(dir)
	if err != nil {
		return nil, errors.Errorf("reading template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("reading template directory: %s is not a directory", dir)
	}

	var files []string
	var skipped error
	err = afero.Walk(f.fs, dir, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			skipped = multierr.Append(skipped, errors.Errorf("walking %s: %w", path, err))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if path == dir {
				return nil
			}
			if skippedDirs[info.Name()] || strings.Count(rel, "/")+1 > f.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		for _, glob := range globs {
			if ok, _ := doublestar.Match(glob, rel); ok {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking template directory: %w", err)
	}

	return files, skipped
}

// Discover lists every template under the given template directories and the
// workspace root, without duplicates. Directories that cannot be read are
// treated as empty; their errors are logged once and not returned.
func Discover(ctx context.Context, finder TemplateFinder, root string, templateDirectories []string) []string {
	searchDirs := make([]string, 0, len(templateDirectories)+1)
	for _, dir := range templateDirectories {
		searchDirs = append(searchDirs, filepath.Join(root, dir))
	}
	searchDirs = append(searchDirs, root)

	var out []string
	var errs error
	seen := make(map[string]bool)
	for _, dir := range searchDirs {
		files, err := finder.FindTemplates(ctx, dir, nil)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if !errors.Is(err, os.ErrNotExist) {
				errs = multierr.Append(errs, err)
			}
		}
		for _, file := range files {
			if !seen[file] {
				seen[file] = true
				out = append(out, file)
			}
		}
	}

	if errs != nil {
		zerolog.Ctx(ctx).Warn().Err(errs).Int("errors", len(multierr.Errors(errs))).Msg("skipped unreadable template directories")
	}
	return out
}
