// Package searcher answers region queries over the letters of a spatial
// string.
//
// A Searcher is built from a Spatial string with Init, which takes a
// snapshot of its letters in either OCR image or original image
// coordinates and derives words and lines from the string's segmentation.
// Letters, words and lines are indexed in R-trees.
//
// # Matching
//
// Every candidate box is classified against the query rectangle as one of
// NotIntersecting, Touching, Overlapping, Contained or Contains. The
// configuration decides which relations count:
//
//   - UseMidpointsOnly: Overlapping or stronger
//   - IncludeDataOnBoundary: anything but NotIntersecting
//   - neither: Contains only (the element lies inside the region)
//
// At Word and Line resolution a matching word or line contributes all of
// its spatial letters.
//
// # Results
//
// DataInRegion builds a new Spatial string from the matched letters and
// puts spaces, line breaks and paragraph breaks back where the source had
// them. Letters can be excluded from all later results with
// ExcludeDataInRegion until ResetExcludedData is called.
//
// # Concurrency
//
// A Searcher is not safe for concurrent use.
package searcher
