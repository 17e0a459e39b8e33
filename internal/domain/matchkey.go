package domain

// MatchKey is the heuristic identity of a real-world match within one
// subject's history. Two scraped entries with equal keys are the same match,
// even when scraped at different times.
type MatchKey struct {
	OpponentName        string
	OpponentCharacter   string
	Outcome             Outcome
	SubjectRatingScore  *int
	SubjectRatingPoints *int
}

// Key returns the dedup key of a stored or about-to-be-stored match.
func (m Match) Key() MatchKey {
	return MatchKey{
		OpponentName:        m.OpponentName,
		OpponentCharacter:   m.OpponentCharacter,
		Outcome:             m.Outcome,
		SubjectRatingScore:  m.SubjectRatingScore,
		SubjectRatingPoints: m.SubjectRatingPoints,
	}
}

// Equal compares optional ratings with NULL-equals-NULL semantics, the same
// way the storage query does.
func (k MatchKey) Equal(o MatchKey) bool {
	return k.OpponentName == o.OpponentName &&
		k.OpponentCharacter == o.OpponentCharacter &&
		k.Outcome == o.Outcome &&
		intPtrEqual(k.SubjectRatingScore, o.SubjectRatingScore) &&
		intPtrEqual(k.SubjectRatingPoints, o.SubjectRatingPoints)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// IntPtr is a small helper for optional ratings.
func IntPtr(v int) *int {
	return &v
}
