package scraper

import "strings"

const (
	SlotOne = 1
	SlotTwo = 2
)

// ResolveSubjectSlot decides which combatant slot is the subject by display
// name. When neither name matches (or both do) it falls back to slot two and
// reports the result as not confident.
func ResolveSubjectSlot(subject, p1, p2 string) (slot int, confident bool) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return SlotTwo, false
	}
	m1 := strings.TrimSpace(p1) == subject
	m2 := strings.TrimSpace(p2) == subject
	switch {
	case m1 && !m2:
		return SlotOne, true
	case m2 && !m1:
		return SlotTwo, true
	default:
		return SlotTwo, false
	}
}
