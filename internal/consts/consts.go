package consts

// Solver defaults, applied when a caller or config file leaves the
// corresponding field at its zero value.
const (
	DefaultSBase    = 100.0 // MVA
	DefaultTol      = 1e-12 // pu, on the mismatch vector
	DefaultMaxIters = 20    // Newton-Raphson iteration cap
	DefaultLoadStep = 0.001 // lambda increment for loadability studies
)
