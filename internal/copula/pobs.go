package copula

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Pobs converts observations on any scale into pseudo-observations on the
// open unit hypercube (0,1)^d. Each column is ranked independently under
// the given ties policy and scaled by 1/(n+1), so the result never touches
// 0 or 1 and is invariant to strictly increasing transforms of the margins.
//
// Non-finite entries produce a ValidationError.
func Pobs(data mat.Matrix, ties Ties) (*mat.Dense, error) {
	if !ties.IsValid() {
		return nil, &ValidationError{
			Field:   "ties",
			Message: fmt.Sprintf("unknown ties policy %q (valid: average, min, max, dense, ordinal)", string(ties)),
			Value:   string(ties),
		}
	}
	n, d := data.Dims()
	if n == 0 || d == 0 {
		return nil, &ValidationError{
			Field:   "data",
			Message: "data must have at least one row and one column",
			Value:   fmt.Sprintf("%dx%d", n, d),
		}
	}

	out := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	den := float64(n) + 1
	for j := 0; j < d; j++ {
		mat.Col(col, j, data)
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &ValidationError{
					Field:   "data",
					Message: fmt.Sprintf("non-finite value at row %d, column %d", i, j),
					Value:   v,
				}
			}
		}
		ranks := Rank(col, ties)
		for i := 0; i < n; i++ {
			out.Set(i, j, ranks[i]/den)
		}
	}
	return out, nil
}

// Rank assigns 1-based ranks to the values of a single column. Tied values
// are resolved by the ties policy: average, min, and max act on the ordinal
// rank span of each tie group, dense reuses consecutive ranks across
// groups, and ordinal breaks ties by position.
func Rank(column []float64, ties Ties) []float64 {
	n := len(column)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// Stable sort keeps tied values in input order, which is what gives
	// the ordinal policy its positional tie-break.
	sort.SliceStable(idx, func(a, b int) bool {
		return column[idx[a]] < column[idx[b]]
	})

	ranks := make([]float64, n)
	switch ties {
	case TiesOrdinal:
		for pos, id := range idx {
			ranks[id] = float64(pos + 1)
		}
	case TiesDense:
		r := 0.0
		for pos, id := range idx {
			if pos == 0 || column[id] != column[idx[pos-1]] {
				r++
			}
			ranks[id] = r
		}
	default:
		// average, min, max: walk tie groups over the sorted order.
		for i := 0; i < n; {
			j := i + 1
			for j < n && column[idx[j]] == column[idx[i]] {
				j++
			}
			var r float64
			switch ties {
			case TiesMin:
				r = float64(i + 1)
			case TiesMax:
				r = float64(j)
			default:
				r = (float64(i+1) + float64(j)) / 2
			}
			for k := i; k < j; k++ {
				ranks[idx[k]] = r
			}
			i = j
		}
	}
	return ranks
}
