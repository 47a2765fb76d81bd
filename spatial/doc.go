// Package spatial provides the spatial text model: a string of OCR output in
// which characters may carry a bounding box, page number, font attributes
// and confidence.
//
// # Modes
//
// A [String] is always in one of three modes:
//
//   - [Spatial] - every character has a [Letter]; the letter array is as long
//     as the text
//   - [Hybrid] - the text is described as a whole by one or more
//     [RasterZone] values
//   - [NonSpatial] - plain text, no geometry
//
// Modes only move downward (Spatial to Hybrid to NonSpatial) unless a
// factory rebuilds the string:
//
//	s, err := spatial.NewFromLetters(letters, "scan.tif", pageInfos)
//	err = s.DowngradeToHybrid()
//	s.DowngradeToNonSpatial()
//
// # Page Infos
//
// Strings with geometry hold a [PageInfoMap] describing each page image:
// its size, the orientation the OCR engine processed it in and the residual
// deskew angle. A PageInfoMap is immutable, so strings share maps freely.
//
// # Coordinate Systems
//
// Letters and zones are stored in OCR image coordinates, the coordinates of
// the image as the OCR engine saw it. [String.OriginalImageLetters] and
// [String.OriginalImageRasterZones] convert to the coordinates of the
// unrotated source image, and [TranslateZone] converts between any two page
// infos.
//
// # Editing
//
// Insert, Append, Remove and Replace keep the mode invariants. Combining a
// Hybrid string with anything yields a Hybrid string, combining a Spatial
// string with plain text yields a Spatial string:
//
//	err := s.Append(other)
//	n, err := s.Replace(`(\d+)-(\d+)`, "$2-$1", spatial.FindOptions{Regexp: true})
//
// # Segmentation
//
// Words, lines, paragraphs and zones are derived from the text and the
// per-letter flags by linear scans:
//
//	for _, line := range s.Lines() {
//	    fmt.Println(line.Text())
//	}
//
// # Persistence
//
// [String.Save] writes a versioned binary record; [String.Load] reads every
// version back to version 1.
package spatial
