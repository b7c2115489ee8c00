package idgen

import "github.com/google/uuid"

// NewFunc produces identifiers. Override in tests for determinism.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier as string.
func New() string { return NewFunc() }

// Stub pins the generator to hand out the supplied ids in order, falling
// back to uuids once exhausted. It returns a restore function; intended for
// tests asserting on assigned identifiers.
func Stub(ids ...string) func() {
	previous := NewFunc
	next := 0
	NewFunc = func() string {
		if next < len(ids) {
			id := ids[next]
			next++
			return id
		}
		return uuid.New().String()
	}
	return func() { NewFunc = previous }
}
