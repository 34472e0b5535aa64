package ordering

import "errors"

const (
	// DefaultGap is the spacing between keys at the column ends and after a
	// rebalance.
	DefaultGap = 1000.0

	// DefaultMinGap is the smallest neighbour distance that is still
	// subdivided. Anything closer triggers a rebalance.
	DefaultMinGap = 1e-6
)

// Params errors
var (
	ErrInvalidGap    = errors.New("ordering gap must be positive")
	ErrInvalidMinGap = errors.New("ordering min gap must be positive and smaller than the gap")
)

// Params defines the tunables of the ordering algorithm.
type Params struct {
	Gap    float64
	MinGap float64
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values keep the defaults.
type ParamsConfig struct {
	Gap    float64
	MinGap float64
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Gap:    DefaultGap,
		MinGap: DefaultMinGap,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()
	if config.Gap > 0 {
		params.Gap = config.Gap
	}
	if config.MinGap > 0 {
		params.MinGap = config.MinGap
	}
	return params
}

// Validate checks that the parameters describe a usable key space.
func (p *Params) Validate() error {
	if !(p.Gap > 0) || isInvalidFloat(p.Gap) {
		return ErrInvalidGap
	}
	if !(p.MinGap > 0) || p.MinGap >= p.Gap || isInvalidFloat(p.MinGap) {
		return ErrInvalidMinGap
	}
	return nil
}
