// Package strike searches for the set of courses whose exclusion yields the
// best weighted average grade of a transcript.
package strike

import (
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
)

// Group holds the strike candidates of one category as indices into the
// course list they were built from.
type Group struct {
	Category   string
	Candidates []int
}

// Candidates groups the strikable courses by category. Groups keep the order
// in which their category first appears so enumeration is deterministic.
func Candidates(courses []transcript.Course) []Group {
	var groups []Group
	index := make(map[string]int)

	for i, c := range courses {
		if !c.Strikable() {
			continue
		}
		g, ok := index[c.Category]
		if !ok {
			g = len(groups)
			index[c.Category] = g
			groups = append(groups, Group{Category: c.Category})
		}
		groups[g].Candidates = append(groups[g].Candidates, i)
	}

	return groups
}

// CandidateCount returns the total number of candidates over all groups.
func CandidateCount(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Candidates)
	}
	return n
}
