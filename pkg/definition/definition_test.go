package definition_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/twigls/pkg/definition"
	"github.com/walteh/twigls/pkg/finder"
	"github.com/walteh/twigls/pkg/position"
	"github.com/walteh/twigls/pkg/resolver"
	"github.com/walteh/twigls/pkg/walker"
)

func TestDefinition(t *testing.T) {
	fs := afero.NewMemMapFs()
	for name, content := range map[string]string{
		"/ws/templates/root.twig": "{% block title %}{% endblock %}{% block footer %}{% endblock %}",
		"/ws/templates/base.twig": "{% extends 'root.twig' %}\n{% block content %}{% endblock %}",
		"/ws/templates/nav.twig":  "<nav/>",
	} {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	p := definition.NewProvider(walker.New(resolver.New(fs, "/ws", nil), finder.NewDefaultFinder(fs)))

	text := strings.Join([]string{
		`{% extends "base.twig" %}`,
		`{% block content %}{{ parent() }}{% set item = 1 %}{{ item }}{% endblock %}`,
		`{% block title %}{{ block('footer') }}{{ block('content') }}{{ block('local') }}{% endblock %}`,
		`{% block local %}{% endblock %}{% include 'nav.twig' %}{% include 'none.twig' %}`,
		`{{ parent() }}`,
	}, "\n")
	tmpl := walker.FromDocument(position.NewTextDocument("file:///ws/templates/page.twig", text))

	tests := []struct {
		name      string
		at        string
		nth       int
		shift     int
		wantURI   string
		wantStart position.Place
		wantOK    bool
	}{
		{
			name:    "extends resolves to file start",
			at:      "base.twig",
			wantURI: "file:///ws/templates/base.twig",
			wantOK:  true,
		},
		{
			name:    "include resolves to file start",
			at:      "nav.twig",
			wantURI: "file:///ws/templates/nav.twig",
			wantOK:  true,
		},
		{
			name: "unresolved include",
			at:   "none.twig",
		},
		{
			name:      "block definition jumps to parent",
			at:        "content %}",
			wantURI:   "file:///ws/templates/base.twig",
			wantStart: position.Place{Line: 1, Character: 0},
			wantOK:    true,
		},
		{
			name:    "block definition jumps to grandparent",
			at:      "title %}",
			wantURI: "file:///ws/templates/root.twig",
			wantOK:  true,
		},
		{
			name: "block defined nowhere above",
			at:   "local %}",
		},
		{
			name:      "block reference resolves in chain",
			at:        "'footer'",
			shift:     1,
			wantURI:   "file:///ws/templates/root.twig",
			wantStart: position.Place{Line: 0, Character: 31},
			wantOK:    true,
		},
		{
			name:      "block reference prefers the current file",
			at:        "'content'",
			shift:     1,
			wantURI:   "file:///ws/templates/page.twig",
			wantStart: position.Place{Line: 1, Character: 0},
			wantOK:    true,
		},
		{
			name:      "block reference resolves locally first",
			at:        "'local'",
			shift:     1,
			wantURI:   "file:///ws/templates/page.twig",
			wantStart: position.Place{Line: 3, Character: 0},
			wantOK:    true,
		},
		{
			name:      "parent call inside block",
			at:        "parent",
			wantURI:   "file:///ws/templates/base.twig",
			wantStart: position.Place{Line: 1, Character: 0},
			wantOK:    true,
		},
		{
			name: "parent call outside block",
			at:   "parent",
			nth:  1,
		},
		{
			name:      "variable goes to first occurrence",
			at:        "{{ item",
			shift:     3,
			wantURI:   "file:///ws/templates/page.twig",
			wantStart: position.Place{Line: 1, Character: 40},
			wantOK:    true,
		},
		{
			name: "plain text",
			at:   "extends",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := nthIndex(text, tt.at, tt.nth)
			require.GreaterOrEqual(t, idx, 0)

			loc, ok := p.Definition(context.Background(), tmpl, idx+tt.shift)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantURI, loc.URI)
			assert.Equal(t, tt.wantStart, loc.Range.Start)
		})
	}
}

func nthIndex(s, sub string, n int) int {
	offset := 0
	for i := 0; ; i++ {
		idx := strings.Index(s[offset:], sub)
		if idx < 0 {
			return -1
		}
		if i == n {
			return offset + idx
		}
		offset += idx + len(sub)
	}
}
