package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/twigls/pkg/position"
)

func TestDetectContext(t *testing.T) {
	tests := []struct {
		name        string
		prefix      string
		wantKind    ContextKind
		wantPartial string
	}{
		{name: "empty", prefix: "", wantKind: ContextNone},
		{name: "plain text", prefix: "<div>hello", wantKind: ContextNone},
		{name: "extends quote", prefix: "{% extends '", wantKind: ContextTemplatePath},
		{name: "include partial", prefix: `{% include "layouts/ba`, wantKind: ContextTemplatePath, wantPartial: "layouts/ba"},
		{name: "closed template literal", prefix: "{% include 'a.twig' ", wantKind: ContextNone},
		{name: "block call", prefix: "{{ block('he", wantKind: ContextBlockName, wantPartial: "he"},
		{name: "block call with spaces", prefix: `{{block( "`, wantKind: ContextBlockName},
		{name: "variable", prefix: "x {{ us", wantKind: ContextVariable, wantPartial: "us"},
		{name: "variable after member access", prefix: "{{ user.", wantKind: ContextNone},
		{name: "tag start", prefix: "{% ", wantKind: ContextTag},
		{name: "tag partial", prefix: "{%en", wantKind: ContextTag, wantPartial: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectContext(tt.prefix)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantPartial, got.Partial)
			assert.Equal(t, tt.prefix, got.LinePrefix)
		})
	}
}

func TestNewCompletionContext(t *testing.T) {
	doc := position.NewTextDocument("file:///a.twig", "<p>ünïcode</p>\n{% include 'nav")

	got := NewCompletionContext(doc, position.Place{Line: 1, Character: 15})
	assert.Equal(t, ContextTemplatePath, got.Kind)
	assert.Equal(t, "nav", got.Partial)

	got = NewCompletionContext(doc, position.Place{Line: 1, Character: 3})
	assert.Equal(t, ContextTag, got.Kind)
	assert.Equal(t, "{% ", got.LinePrefix)

	got = NewCompletionContext(doc, position.Place{Line: 0, Character: 6})
	assert.Equal(t, "<p>ünï", got.LinePrefix)
}
