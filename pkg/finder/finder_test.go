package finder_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/twigls/pkg/finder"
)

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestDefaultFinder_FindTemplates(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/ws/base.twig":                    "{% block a %}{% endblock %}",
		"/ws/page.html.twig":               "{% extends 'base.twig' %}",
		"/ws/notes.txt":                    "not a template",
		"/ws/sub/nested.twig":              "x",
		"/ws/sub/deeper/more.twig":         "x",
		"/ws/node_modules/pkg/vendor.twig": "x",
		"/ws/.git/hooks/x.twig":            "x",
	})

	tests := []struct {
		name       string
		dir        string
		extensions []string
		want       []string
		wantErr    bool
	}{
		{
			name: "default extensions",
			dir:  "/ws",
			want: []string{
				"/ws/base.twig",
				"/ws/page.html.twig",
				"/ws/sub/deeper/more.twig",
				"/ws/sub/nested.twig",
			},
		},
		{
			name:       "only html.twig",
			dir:        "/ws",
			extensions: []string{".html.twig"},
			want:       []string{"/ws/page.html.twig"},
		},
		{
			name:       "other extensions",
			dir:        "/ws",
			extensions: []string{".txt"},
			want:       []string{"/ws/notes.txt"},
		},
		{
			name:    "non-existent directory",
			dir:     "/ws/missing",
			wantErr: true,
		},
		{
			name:    "file instead of directory",
			dir:     "/ws/base.twig",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := finder.NewDefaultFinder(fs)
			got, err := f.FindTemplates(context.Background(), tt.dir, tt.extensions)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, got)
				return
			}

			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestDefaultFinder_MaxDepth(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/ws/a.twig":         "x",
		"/ws/1/b.twig":       "x",
		"/ws/1/2/c.twig":     "x",
		"/ws/1/2/3/d.twig":   "x",
		"/ws/1/2/3/4/e.twig": "x",
	})

	got, err := finder.NewDefaultFinder(fs).WithMaxDepth(2).FindTemplates(context.Background(), "/ws", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/ws/a.twig", "/ws/1/b.twig", "/ws/1/2/c.twig"}, got)
}

func TestDefaultFinder_FindTemplates_Context(t *testing.T) {
	fs := newFs(t, map[string]string{"/ws/test.twig": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := finder.NewDefaultFinder(fs).FindTemplates(ctx, "/ws", nil)
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/ws/templates/base.twig":  "x",
		"/ws/templates/nav.twig":   "x",
		"/ws/views/home.html.twig": "x",
		"/ws/root.twig":            "x",
		"/ws/assets/readme.md":     "x",
	})

	got := finder.Discover(context.Background(), finder.NewDefaultFinder(fs), "/ws", []string{"templates", "missing", "views"})

	assert.Equal(t, []string{
		"/ws/templates/base.twig",
		"/ws/templates/nav.twig",
		"/ws/views/home.html.twig",
		"/ws/root.twig",
	}, got)
}
