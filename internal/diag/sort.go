package diag

import (
	"sort"

	"github.com/maruel/natural"
)

// SortStable orders diagnostics by file, then by natural order of their
// range's starting position rendered as text ("3:10" sorts before
// "12:1"), then by code. Natural ordering keeps multi-digit line numbers
// from interleaving lexicographically, which matters once a script grows
// past line 9.
func SortStable(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return natural.Less(a.File, b.File)
		}
		posA := a.Range.Start.String()
		posB := b.Range.Start.String()
		if posA != posB {
			return natural.Less(posA, posB)
		}
		return a.Code < b.Code
	})
}
