package providers

// Tags is every tag keyword offered after an opening tag delimiter.
var Tags = []string{
	"block", "endblock", "extends", "include", "if", "endif", "else", "elseif",
	"for", "endfor", "set", "macro", "endmacro", "import", "from", "use",
	"filter", "endfilter", "spaceless", "endspaceless", "autoescape", "endautoescape",
	"raw", "endraw", "verbatim", "endverbatim", "with", "endwith",
}

type TagProvider struct{}

func NewTagProvider() *TagProvider {
	return &TagProvider{}
}

func (p *TagProvider) GetCompletions() []CompletionItem {
	completions := make([]CompletionItem, 0, len(Tags))
	for _, tag := range Tags {
		completions = append(completions, CompletionItem{
			Label:      tag,
			Kind:       KindKeyword,
			Detail:     "Twig Tag",
			InsertText: tag,
		})
	}
	return completions
}
