// Command forest generates a fractal forest and shows its first tree as a
// wireframe.
//
//	forest <num_trees> <completeness_factor> <fractal_level> [flags]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "forest:", err)
		os.Exit(1)
	}
}
