package copula

import (
	"fmt"
	"strings"
)

// Summary is a point-in-time description of a model: family, dimension,
// parameters, and fit statistics when available.
type Summary struct {
	Name   string
	Dim    int
	Params []float64
	State  State
	Stats  *FitStats
}

// Summary captures the model's current state for reporting.
func (c *Copula) Summary() Summary {
	return Summary{
		Name:   c.Name(),
		Dim:    c.Dim(),
		Params: c.Params(),
		State:  c.State(),
		Stats:  c.FitStats(),
	}
}

// String renders the summary as a fixed-width text block.
func (s Summary) String() string {
	var b strings.Builder
	title := fmt.Sprintf("%s Copula Summary", s.Name)
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n")
	fmt.Fprintf(&b, "Dimension:    %d\n", s.Dim)
	fmt.Fprintf(&b, "State:        %s\n", s.State)
	fmt.Fprintf(&b, "Parameters:   %s\n", formatVector(s.Params))

	if s.Stats == nil {
		return b.String()
	}
	b.WriteString("\nFit Statistics\n")
	b.WriteString("--------------\n")
	fmt.Fprintf(&b, "Method:         %s\n", s.Stats.Method)
	fmt.Fprintf(&b, "Observations:   %d\n", s.Stats.Observations)
	fmt.Fprintf(&b, "Log-likelihood: %.4f\n", s.Stats.LogLik)
	fmt.Fprintf(&b, "AIC:            %.4f\n", s.Stats.AIC())
	fmt.Fprintf(&b, "BIC:            %.4f\n", s.Stats.BIC())
	if s.Stats.StdErrs != nil {
		fmt.Fprintf(&b, "Std. errors:    %s\n", formatVector(s.Stats.StdErrs))
	}
	if s.Stats.Iterations > 0 {
		fmt.Fprintf(&b, "Iterations:     %d (%d evaluations)\n", s.Stats.Iterations, s.Stats.FuncEvals)
	}
	fmt.Fprintf(&b, "Fitted at:      %s\n", s.Stats.FittedAt.Format("2006-01-02 15:04:05"))
	return b.String()
}

func formatVector(v []float64) string {
	if len(v) == 0 {
		return "(none)"
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.6f", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
