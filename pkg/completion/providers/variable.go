package providers

import (
	"github.com/walteh/twigls/pkg/walker"
)

// GlobalVariables are always offered alongside the template's own variables.
var GlobalVariables = []string{"app", "dump", "_context", "_charset", "_locale"}

// VariableProvider handles variable completions
type VariableProvider struct{}

// NewVariableProvider creates a new variable completion provider
func NewVariableProvider() *VariableProvider {
	return &VariableProvider{}
}

// GetCompletions returns the variables seen in the template, in order of first
// use, followed by the globals.
func (p *VariableProvider) GetCompletions(tmpl *walker.Template) []CompletionItem {
	names := append(tmpl.Facts.VariableNames(), GlobalVariables...)

	seen := make(map[string]bool, len(names))
	var completions []CompletionItem
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		completions = append(completions, CompletionItem{
			Label:      name,
			Kind:       KindVariable,
			Detail:     "Twig Variable",
			InsertText: name,
		})
	}
	return completions
}
