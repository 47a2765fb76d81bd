// Package model provides the geometric primitives shared by the spatial
// text packages.
//
// All coordinates are image coordinates: the origin is the top-left corner of
// a page image, X grows to the right and Y grows downward. Transform code that
// needs a Cartesian (Y-up) system converts explicitly.
//
// # Rectangles
//
// [Rect] is an integer, axis-aligned rectangle stored as its four edges:
//
//	r := model.NewRect(10, 20, 110, 70)
//	r.Width()  // 100
//	r.Height() // 50
//
// Intersection tests treat shared edges as intersecting; use [Rect.Overlaps]
// when a positive shared area is required.
//
// # Transformations
//
// [Matrix] is a 2D affine transformation in row-vector form. [Rotate],
// [Translate] and [RotateAbout] build the matrices used to rotate raster
// zones about their own midpoint.
//
// # Polygons
//
// [Polygon] supports area and convex intersection area, which is what raster
// zone overlap calculations are built on.
package model
