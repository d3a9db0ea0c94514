package hover

import (
	"fmt"
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
	"github.com/spf13/afero"
)

const (
	PreviewMaxLines = 10
	PreviewMaxChars = 500
	PreviewMaxBytes = 100 * 1024
)

// Preview is the head of a template file plus a one line summary of its size.
type Preview struct {
	Content  string
	Metadata string
}

// ReadPreview never fails: unreadable files produce a placeholder preview.
func ReadPreview(fs afero.Fs, path string) Preview {
	info, err := fs.Stat(path)
	if err != nil {
		return unavailablePreview()
	}

	size := fmt.Sprintf("%.1f KB", float64(info.Size())/1024)
	modified := info.ModTime().Format("2006-01-02")

	if info.Size() > PreviewMaxBytes {
		return Preview{
			Content:  "*File too large to preview*",
			Metadata: fmt.Sprintf("**Size**: %s | **Modified**: %s", size, modified),
		}
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return unavailablePreview()
	}

	lines := strings.Split(string(data), "\n")
	head := lines
	if len(head) > PreviewMaxLines {
		head = head[:PreviewMaxLines]
	}

	content, truncated := TruncateGraphemes(strings.Join(head, "\n"), PreviewMaxChars)
	if truncated {
		content += "..."
	}
	if len(lines) > PreviewMaxLines {
		content += "\n..."
	}

	return Preview{
		Content:  content,
		Metadata: fmt.Sprintf("**Size**: %s | **Lines**: %d | **Modified**: %s", size, len(lines), modified),
	}
}

func unavailablePreview() Preview {
	return Preview{
		Content:  "*Could not read file*",
		Metadata: "*File information unavailable*",
	}
}

// TruncateGraphemes cuts s after max user-perceived characters.
func TruncateGraphemes(s string, max int) (string, bool) {
	data := []byte(s)
	offset := 0
	for count := 0; offset < len(data); count++ {
		if count == max {
			return s[:offset], true
		}
		advance, _, err := textseg.ScanGraphemeClusters(data[offset:], true)
		if err != nil || advance == 0 {
			break
		}
		offset += advance
	}
	return s, false
}
