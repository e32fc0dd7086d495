package copula

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ExamplePobs shows the rank transform that precedes every fit: each
// column is ranked independently and scaled into the open unit interval.
func ExamplePobs() {
	data := mat.NewDense(3, 2, []float64{
		0.1, 0.9,
		0.5, 0.5,
		0.9, 0.1,
	})

	u, err := Pobs(data, TiesAverage)
	if err != nil {
		fmt.Println(err)
		return
	}
	for i := 0; i < 3; i++ {
		fmt.Printf("%.2f %.2f\n", u.At(i, 0), u.At(i, 1))
	}
	// Output:
	// 0.25 0.75
	// 0.50 0.50
	// 0.75 0.25
}

// ExampleCopula_Concentration evaluates the tail concentration function of
// the product copula, where C(x,x) = x^2 makes the lower half equal x.
func ExampleCopula_Concentration() {
	fam, err := NewIndependence(2)
	if err != nil {
		fmt.Println(err)
		return
	}
	model := New(fam)

	for _, x := range []float64{0.1, 0.3, 0.5, 0.9} {
		v, err := model.Concentration(x)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("%.1f -> %.2f\n", x, v)
	}
	// Output:
	// 0.1 -> 0.10
	// 0.3 -> 0.30
	// 0.5 -> 0.50
	// 0.9 -> 0.10
}
