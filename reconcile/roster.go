package reconcile

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Roster maps each company expected to bill in a period to its minimum bill
// count. Names are matched byte for byte. A Roster is never modified after
// NewRoster returns it.
type Roster struct {
	expected map[string]int
}

// NewRoster copies expected into a Roster. Negative counts are rejected.
func NewRoster(expected map[string]int) (Roster, error) {
	r := Roster{expected: make(map[string]int, len(expected))}
	for name, count := range expected {
		if count < 0 {
			return Roster{}, fmt.Errorf("roster: company %q has negative expected count %d", name, count)
		}
		r.expected[name] = count
	}
	return r, nil
}

// Expected returns the expected bill count for name, or 0 if it is not listed.
func (r Roster) Expected(name string) int {
	return r.expected[name]
}

// Contains reports whether name is listed.
func (r Roster) Contains(name string) bool {
	_, ok := r.expected[name]
	return ok
}

// Companies returns the listed names, sorted.
func (r Roster) Companies() []string {
	names := maps.Keys(r.expected)
	slices.Sort(names)
	return names
}

func (r Roster) Len() int { return len(r.expected) }
