package get_completions

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/twigls/pkg/completion/providers"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		line      int
		character int
		check     func(t *testing.T, items []providers.CompletionItem)
	}{
		{
			name:      "tags",
			content:   "{% e",
			character: 4,
			check: func(t *testing.T, items []providers.CompletionItem) {
				require.Len(t, items, len(providers.Tags))
				assert.Equal(t, "block", items[0].Label)
				assert.Equal(t, providers.KindKeyword, items[0].Kind)
			},
		},
		{
			name:      "template paths",
			content:   "<p>\n{% include '",
			line:      1,
			character: 12,
			check: func(t *testing.T, items []providers.CompletionItem) {
				var labels []string
				for _, item := range items {
					assert.Equal(t, providers.KindFile, item.Kind)
					labels = append(labels, item.Label)
				}
				assert.Contains(t, labels, "nav.twig")
			},
		},
		{
			name:    "nothing",
			content: "plain text",
			check: func(t *testing.T, items []providers.CompletionItem) {
				assert.NotNil(t, items)
				assert.Empty(t, items)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/ws/templates/page.twig", []byte(tt.content), 0o644))
			require.NoError(t, afero.WriteFile(fs, "/ws/templates/nav.twig", []byte("<nav>"), 0o644))

			var out bytes.Buffer
			h := &Handler{
				workspace: "/ws",
				filePath:  "templates/page.twig",
				line:      tt.line,
				character: tt.character,
				fs:        fs,
				out:       &out,
			}
			require.NoError(t, h.Run(context.Background()))

			var items []providers.CompletionItem
			require.NoError(t, json.Unmarshal(out.Bytes(), &items))
			tt.check(t, items)
		})
	}
}

func TestRunMissingFile(t *testing.T) {
	h := &Handler{workspace: "/ws", filePath: "nope.twig", fs: afero.NewMemMapFs(), out: &bytes.Buffer{}}
	assert.Error(t, h.Run(context.Background()))
}
