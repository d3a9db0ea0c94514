package providers

// Kind categories used by CompletionItem.
const (
	KindFile     = "file"
	KindProperty = "property"
	KindVariable = "variable"
	KindKeyword  = "keyword"
)

// CompletionItem represents a single completion suggestion
type CompletionItem struct {
	Label         string `json:"label"`
	Kind          string `json:"kind"`
	Detail        string `json:"detail,omitempty"`
	Documentation string `json:"documentation,omitempty"`
	InsertText    string `json:"insertText,omitempty"`
	SortText      string `json:"sortText,omitempty"`
	FilterText    string `json:"filterText,omitempty"`
}
