package copula

import "fmt"

// DomainError reports an argument outside the mathematical domain of an
// operation, such as a CDF evaluation point that leaves the unit hypercube.
type DomainError struct {
	Op    string
	Value float64
	Min   float64
	Max   float64
}

func (de DomainError) Error() string {
	return fmt.Sprintf("%s: value %g outside domain [%g, %g]", de.Op, de.Value, de.Min, de.Max)
}

// ValidationError represents invalid input such as malformed data shapes,
// parameter values a family rejects, or unknown configuration values.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (ve ValidationError) Error() string {
	return ve.Message
}

// PreconditionError reports an operation invoked before its required state
// was reached, such as sampling from an unfitted model.
type PreconditionError struct {
	Op      string
	Message string
}

func (pe PreconditionError) Error() string {
	return pe.Message
}

// NotImplementedError reports a capability a family does not provide, such
// as Spearman's rho for the Clayton copula.
type NotImplementedError struct {
	Family     string
	Capability string
}

func (ne NotImplementedError) Error() string {
	return fmt.Sprintf("%s copula does not implement %s", ne.Family, ne.Capability)
}

// EstimationError reports a failed fit. The model's parameters and fit
// state are unchanged when Fit returns one.
type EstimationError struct {
	Method  Method
	Message string
	Err     error
}

func (ee EstimationError) Error() string {
	if ee.Err != nil {
		return fmt.Sprintf("%s estimation failed: %s: %v", ee.Method, ee.Message, ee.Err)
	}
	return fmt.Sprintf("%s estimation failed: %s", ee.Method, ee.Message)
}

func (ee EstimationError) Unwrap() error {
	return ee.Err
}

func notImplemented(family, capability string) error {
	return &NotImplementedError{Family: family, Capability: capability}
}
