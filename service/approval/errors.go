package approval

import "errors"

// ErrAlreadyResolved is returned when a mutation targets a request that has
// already reached a terminal state. Terminal requests never change:
// decisions are not recorded against them and ResolvedAt is never rewritten.
var ErrAlreadyResolved = errors.New("approval: request already resolved")
