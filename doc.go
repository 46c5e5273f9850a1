// Package forest procedurally generates fractal trees and renders them as a
// line-list wireframe with [Ebitengine].
//
// # Generation
//
// A [TreeGenerator] holds three parameters fixed at construction: the
// fractal level (maximum recursion depth), the completeness factor (the
// chance out of 256 that a candidate direction branches) and the number of
// trees in a forest:
//
//	gen, err := forest.NewTreeGenerator(8, 192, 1, forest.WithSeed(42))
//	if err != nil {
//		return err
//	}
//	f := gen.GenerateForest()
//	tree, err := f.First() // ErrNoGeometry for an empty forest
//
// Every tree grows from the origin, its first segment pointing [Up]. Each
// segment ends at a node that tries the eight [GrowthDirections] in order,
// skipping only the direction it arrived in, and recurses one level down for
// every draw below the completeness factor. Level 0 segments are leaves.
//
// Cardinal segments at level L are scale*2^L long on one axis. Diagonal
// segments move scale*2^L/sqrt(2) on each axis, so every segment of a level
// has the same Euclidean length.
//
// # Geometry
//
// A [Tree] exposes a vertex array (position with z = 0 plus RGB color) and an
// even-length index array read as a line list: indices 2k and 2k+1 are the
// endpoints of segment k. [Tree.VertexBytes] and [Tree.IndexBytes] give the
// packed little-endian form a GPU upload expects.
//
// Randomness is injected through [Rand]; [WithSeed] and [WithRand] make
// output reproducible. [TreeGenerator.GenerateForestParallel] builds trees
// concurrently with one source per tree and the same result for any worker
// count.
//
// # Viewer
//
// [Scene] implements [ebiten.Game]. It shows one tree at a time, tree 0 by
// default, and expands each segment into a screen-space quad drawn with a
// single DrawTriangles32 call. [Run] opens the window:
//
//	scene, err := forest.NewScene(forest.SceneConfig{Generator: gen})
//	if err != nil {
//		return err
//	}
//	return forest.Run(scene, forest.RunConfig{Title: "Forest", Width: 800, Height: 600})
//
// Escape quits, R regenerates, and the arrow keys step through the forest.
// Scenes can also be driven by a JSON script ([LoadScript]) that waits,
// regenerates, switches trees and captures screenshots.
//
// [Ebitengine]: https://ebitengine.org
package forest
