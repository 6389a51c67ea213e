package errors

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agext/levenshtein"
)

// MaxSuggestions is the maximum number of suggestions to return.
const MaxSuggestions = 3

// Suggestion is a candidate name and its edit distance from the name that
// was asked for.
type Suggestion struct {
	Value    string
	Distance int
}

// normalize folds case and treats dashes like underscores, so that
// "Strip-Directives" is an exact match for "strip_directives".
func normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

// maxDistance is the largest edit distance accepted for a target of the
// given length. Short names need closer matches.
func maxDistance(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 5:
		return 2
	}
	return 3
}

func distance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}

// SuggestSimilar returns up to MaxSuggestions candidates close to target,
// closest first. It is used for misspelled transformation types and step
// names in pipeline files.
func SuggestSimilar(target string, candidates []string) []Suggestion {
	if target == "" {
		return nil
	}
	norm := normalize(target)
	limit := maxDistance(len([]rune(norm)))
	var out []Suggestion
	for _, c := range candidates {
		if c == "" {
			continue
		}
		d := distance(norm, normalize(c))
		if d == 0 && c == target {
			continue
		}
		if d <= limit {
			out = append(out, Suggestion{Value: c, Distance: d})
		}
	}
	slices.SortFunc(out, func(a, b Suggestion) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return strings.Compare(a.Value, b.Value)
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// FormatSuggestions renders suggestions as a hint, or returns "" when there
// are none.
func FormatSuggestions(suggestions []Suggestion) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("did you mean %q?", suggestions[0].Value)
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = fmt.Sprintf("%q", s.Value)
	}
	return "did you mean one of: " + strings.Join(quoted, ", ") + "?"
}
