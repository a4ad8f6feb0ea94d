// file: internal/matcher/matcher.go
// version: 2.0.0
// guid: 1f2a3b4c-5d6e-7f8a-9b0c-1d2e3f4a5b6c

package matcher

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
)

// Match is a candidate name with its edit distance from the query
type Match struct {
	Name     string
	Distance int
}

// maxTypoDistance is how many edits a name may be from the query and still
// count as similar when it is not a subsequence match.
func maxTypoDistance(query string) int {
	d := len([]rune(query)) / 3
	if d < 2 {
		d = 2
	}
	return d
}

// RankNames returns up to limit names similar to query, best first.
//
// Names that contain the query's characters in order (case-insensitively)
// rank ahead of names that are merely a few edits away, which catches
// abbreviations ("hobit") as well as transpositions ("Hobibt").
func RankNames(query string, names []string, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	matched := make(map[int]struct{}, len(ranks))
	out := make([]Match, 0, limit)
	for _, r := range ranks {
		matched[r.OriginalIndex] = struct{}{}
		if len(out) < limit {
			out = append(out, Match{Name: r.Target, Distance: r.Distance})
		}
	}
	if len(out) >= limit {
		return out
	}

	// Fall back to plain edit distance for typos
	folder := cases.Fold()
	lowered := folder.String(query)
	threshold := maxTypoDistance(query)
	var typos []Match
	for i, name := range names {
		if _, ok := matched[i]; ok {
			continue
		}
		d := fuzzy.LevenshteinDistance(lowered, folder.String(name))
		if d <= threshold {
			typos = append(typos, Match{Name: name, Distance: d})
		}
	}
	sort.SliceStable(typos, func(i, j int) bool {
		if typos[i].Distance != typos[j].Distance {
			return typos[i].Distance < typos[j].Distance
		}
		return typos[i].Name < typos[j].Name
	})

	for _, m := range typos {
		if len(out) >= limit {
			break
		}
		out = append(out, m)
	}
	return out
}
