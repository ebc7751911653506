package colouring

// CountConflicts scans every edge once and counts those whose endpoints hold
// the same set colour. Pure: no side effects, safe to run concurrently with
// reads, but it must not run while colours are being committed (the driver
// audits between rounds).
func CountConflicts(store GraphStore) int {
	conflicts := 0
	for _, e := range store.Edges() {
		a := store.Colour(e.A)
		b := store.Colour(e.B)
		if a.IsSet() && a == b {
			conflicts++
		}
	}
	return conflicts
}
