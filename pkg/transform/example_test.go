package transform_test

import (
	"fmt"

	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/transform"
)

func ExampleSolve() {
	natural := geometry.Size{W: 1000, H: 800}
	sel := geometry.Rect{X: 100, Y: 100, W: 200, H: 160}

	full := geometry.Box{Left: 0, Top: 0, Width: 500, Height: 400}
	cropped := geometry.Box{Left: 50, Top: 50, Width: 400, Height: 320}

	t, err := transform.Solve(full, cropped, sel, natural)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(t.CSS())
	fmt.Printf("%+v\n", t.Apply(cropped))
	// Output:
	// translate(0px, 0px) scale(0.25)
	// {Left:50 Top:50 Width:100 Height:80}
}
