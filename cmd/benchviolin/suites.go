// cmd/benchviolin/suites.go
package benchviolin

import (
	"github.com/mwiater/benchviolin/internal/kernels"
	"github.com/mwiater/benchviolin/internal/suite"
)

// registry holds the suites the commands operate on.
var registry = suite.Default

// Warm-up, iteration and counter settings come from the session.* keys.
func init() {
	kernels.Register(suite.Default, kernels.Params{})
}
