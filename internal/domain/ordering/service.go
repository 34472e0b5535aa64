package ordering

// Engine defines the sort-key operations used by the task service.
type Engine interface {
	// Place computes the key for a task moved to position among siblings.
	// siblings are the ascending keys of the destination column without the
	// moving task. Out-of-range positions are clamped.
	Place(position int, siblings []float64) Placement

	// Append computes the key for a task added after every sibling.
	Append(siblings []float64) Placement

	// Params returns a copy of the engine's parameters.
	Params() Params
}

// defaultEngine is the standard implementation of the Engine interface
type defaultEngine struct {
	params *Params
}

// NewDefaultEngine creates a new ordering engine with default parameters
func NewDefaultEngine() Engine {
	return &defaultEngine{
		params: NewDefaultParams(),
	}
}

// NewEngineWithParams creates a new ordering engine with custom parameters
func NewEngineWithParams(params *Params) (Engine, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	p := *params
	return &defaultEngine{params: &p}, nil
}

// Place implements the Engine interface
func (e *defaultEngine) Place(position int, siblings []float64) Placement {
	return place(position, siblings, e.params)
}

// Append implements the Engine interface
func (e *defaultEngine) Append(siblings []float64) Placement {
	return place(len(siblings), siblings, e.params)
}

// Params implements the Engine interface
func (e *defaultEngine) Params() Params {
	return *e.params
}
