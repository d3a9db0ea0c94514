package locator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/twigls/pkg/locator"
	"github.com/walteh/twigls/pkg/pattern"
	"github.com/walteh/twigls/pkg/position"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name string
		text string
		// cursor sits just before the first occurrence of at, plus shift
		at       string
		shift    int
		wantNil  bool
		wantKind pattern.Kind
		wantName string
	}{
		{
			name:     "extends literal",
			text:     `{% extends "base.twig" %}`,
			at:       "base",
			shift:    2,
			wantKind: pattern.KindExtends,
			wantName: "base.twig",
		},
		{
			name:     "end of include literal is inclusive",
			text:     `{% include 'part.twig' %}`,
			at:       "'",
			shift:    10,
			wantKind: pattern.KindInclude,
			wantName: "part.twig",
		},
		{
			name:     "block name classifies as block not variable",
			text:     `{% block foo %}{% endblock %}`,
			at:       "foo",
			shift:    1,
			wantKind: pattern.KindBlock,
			wantName: "foo",
		},
		{
			name:     "block reference call",
			text:     `{{ block('sidebar') }}`,
			at:       "sidebar",
			wantKind: pattern.KindBlockReference,
			wantName: "sidebar",
		},
		{
			name:     "variable member chain reports root",
			text:     `{{ user.profile.name }}`,
			at:       "name",
			wantKind: pattern.KindVariable,
			wantName: "user",
		},
		{
			name:     "for binding",
			text:     `{% for item in items %}`,
			at:       "item",
			shift:    1,
			wantKind: pattern.KindVariable,
			wantName: "item",
		},
		{
			name:     "set binding",
			text:     `{% set total = 3 %}`,
			at:       "total",
			wantKind: pattern.KindVariable,
			wantName: "total",
		},
		{
			name:    "plain text",
			text:    `<h1>{{ title }}</h1>`,
			at:      "h1",
			wantNil: true,
		},
		{
			name:    "tag keyword",
			text:    `{% extends "base.twig" %}`,
			at:      "extends",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := position.NewTextDocument("file:///t.twig", tt.text)
			idx := strings.Index(tt.text, tt.at)
			require.GreaterOrEqual(t, idx, 0)

			got := locator.Locate(doc, idx+tt.shift)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestLocateVariableRangeCoversChain(t *testing.T) {
	doc := position.NewTextDocument("file:///t.twig", "{{ user.name }}")
	got := locator.Locate(doc, 3)
	require.NotNil(t, got)
	assert.Equal(t, position.Place{Line: 0, Character: 3}, got.Span.Range.Start)
	assert.Equal(t, position.Place{Line: 0, Character: 12}, got.Span.Range.End)
}

func TestLocateParentCall(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantBlock string
		wantOK    bool
	}{
		{
			name:      "inside an open block",
			text:      "{% block content %}\n  {{ parent() }}\n{% endblock %}",
			wantBlock: "content",
			wantOK:    true,
		},
		{
			name:      "inside a nested block",
			text:      "{% block outer %}{% block inner %}{{ parent() }}{% endblock %}{% endblock %}",
			wantBlock: "inner",
			wantOK:    true,
		},
		{
			name:      "after the nested block closed",
			text:      "{% block outer %}{% block inner %}{% endblock %}{{ parent() }}{% endblock %}",
			wantBlock: "outer",
			wantOK:    true,
		},
		{
			name: "outside any block",
			text: "{% block a %}{% endblock %}{{ parent() }}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := position.NewTextDocument("file:///t.twig", tt.text)
			got := locator.Locate(doc, strings.Index(tt.text, "parent")+1)
			require.NotNil(t, got)
			assert.Equal(t, pattern.KindParentCall, got.Kind)
			assert.Equal(t, tt.wantOK, got.HasBlockName)
			assert.Equal(t, tt.wantBlock, got.BlockName)
		})
	}
}

func TestLocateAt(t *testing.T) {
	doc := position.NewTextDocument("file:///t.twig", "line one\n{% include 'nav.twig' %}")
	got := locator.LocateAt(doc, position.Place{Line: 1, Character: 13})
	require.NotNil(t, got)
	assert.Equal(t, pattern.KindInclude, got.Kind)
	assert.Equal(t, "nav.twig", got.Name)
}
