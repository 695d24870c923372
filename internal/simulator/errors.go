package simulator

import "errors"

// ErrInvalidConfig is wrapped by every parameter validation failure. Runs
// reject bad parameters before touching the pool.
var ErrInvalidConfig = errors.New("invalid simulation config")
