package providers

import (
	"strings"
)

// Match scores, higher ranks first.
const (
	ScoreEmptyInput    = 50
	ScoreExact         = 100
	ScorePrefix        = 95
	ScoreContains      = 85
	ScorePathComponent = 80
	ScorePathPrefix    = 75
	ScorePathContains  = 70
	ScoreFuzzyFilename = 60
	ScoreFuzzyPath     = 55
)

// FuzzyMatch reports whether the runes of pattern appear in text in order,
// ignoring case.
func FuzzyMatch(text, pattern string) bool {
	if pattern == "" {
		return true
	}
	want := []rune(strings.ToLower(pattern))
	i := 0
	for _, r := range strings.ToLower(text) {
		if r == want[i] {
			i++
			if i == len(want) {
				return true
			}
		}
	}
	return false
}

// ScoreTemplate ranks suggestion, the label shown for the template file
// filename, against what the user typed so far. It returns false when the
// candidate should be hidden.
func ScoreTemplate(filename, suggestion, input string) (int, bool) {
	if input == "" {
		return ScoreEmptyInput, true
	}

	in := strings.ToLower(input)
	file := strings.ToLower(filename)
	base := strings.TrimSuffix(file, ".twig")
	label := strings.ToLower(suggestion)

	switch {
	case base == in || file == in:
		return ScoreExact, true
	case strings.HasPrefix(base, in) || strings.HasPrefix(file, in):
		return ScorePrefix, true
	case strings.Contains(base, in) || strings.Contains(file, in):
		return ScoreContains, true
	case anyComponentContains(label, in):
		return ScorePathComponent, true
	case strings.HasPrefix(label, in):
		return ScorePathPrefix, true
	case strings.Contains(label, in):
		return ScorePathContains, true
	case FuzzyMatch(base, in) || FuzzyMatch(file, in):
		return ScoreFuzzyFilename, true
	case FuzzyMatch(label, in):
		return ScoreFuzzyPath, true
	}
	return 0, false
}

func anyComponentContains(path, in string) bool {
	for _, component := range strings.Split(path, "/") {
		if strings.Contains(component, in) {
			return true
		}
	}
	return false
}
