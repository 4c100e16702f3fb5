package catalog

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"etalase/internal/models"
)

// DefaultThreshold tolerates roughly one edit per three query characters.
const DefaultThreshold = 0.34

// Search drops items whose best field does not approximately contain text.
// An empty (or blank) text keeps every item in its original order.
func Search(items []models.Item, text string, threshold float64) []models.Item {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		out := make([]models.Item, len(items))
		copy(out, items)
		return out
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if Score(it, needle) <= threshold {
			out = append(out, it)
		}
	}
	return out
}

// Score is the best normalised edit distance of needle against the item's
// name, code, category and note. 0 means an exact substring hit.
func Score(it models.Item, needle string) float64 {
	needle = strings.ToLower(strings.TrimSpace(needle))
	best := 1.0
	for _, field := range []string{it.Name, it.Code, it.Category, it.Note} {
		if s := fieldScore(strings.ToLower(field), needle); s < best {
			best = s
		}
		if best == 0 {
			break
		}
	}
	return best
}

// fieldScore slides windows of width len(needle)-1 .. len(needle)+1 over the
// field so a typo that adds or drops a character still lines up.
func fieldScore(field, needle string) float64 {
	if field == "" {
		return 1
	}
	if strings.Contains(field, needle) {
		return 0
	}

	hay := []rune(field)
	n := len([]rune(needle))
	best := normalised(levenshtein.ComputeDistance(field, needle), n)
	if len(hay) <= n {
		return best
	}

	for width := n - 1; width <= n+1; width++ {
		if width < 1 || width > len(hay) {
			continue
		}
		for start := 0; start+width <= len(hay); start++ {
			d := levenshtein.ComputeDistance(string(hay[start:start+width]), needle)
			if s := normalised(d, n); s < best {
				best = s
			}
		}
	}
	return best
}

func normalised(dist, n int) float64 {
	if n == 0 {
		return 0
	}
	s := float64(dist) / float64(n)
	if s > 1 {
		return 1
	}
	return s
}
