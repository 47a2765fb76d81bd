package searcher

import (
	"fmt"
	"strings"

	"github.com/tsawler/spatialtext/model"
)

// Relation describes how a box relates to a query rectangle. Values are
// ordered from weakest to strongest.
type Relation int

const (
	// NotIntersecting boxes share no point.
	NotIntersecting Relation = iota
	// Touching boxes meet along an edge, or overlap without covering the
	// middle of the query.
	Touching
	// Overlapping boxes overlap and the box covers the query's midpoint.
	Overlapping
	// Contained means the query lies inside the box.
	Contained
	// Contains means the box lies inside the query.
	Contains
)

// String returns a string representation of the relation
func (r Relation) String() string {
	switch r {
	case NotIntersecting:
		return "not-intersecting"
	case Touching:
		return "touching"
	case Overlapping:
		return "overlapping"
	case Contained:
		return "contained"
	case Contains:
		return "contains"
	default:
		return fmt.Sprintf("relation(%d)", int(r))
	}
}

// Classify returns the relation of box to query. Shared edges count as
// inside for containment.
func Classify(box, query model.Rect) Relation {
	switch {
	case !box.Intersects(query):
		return NotIntersecting
	case query.ContainsRect(box):
		return Contains
	case box.ContainsRect(query):
		return Contained
	case box.Overlaps(query) && box.Contains(query.Center()):
		return Overlapping
	default:
		return Touching
	}
}

// Resolution is the granularity of a query.
type Resolution int

const (
	// Character matches individual letters.
	Character Resolution = iota
	// Word matches whole words.
	Word
	// Line matches whole lines.
	Line
)

// String returns a string representation of the resolution
func (r Resolution) String() string {
	switch r {
	case Character:
		return "character"
	case Word:
		return "word"
	case Line:
		return "line"
	default:
		return fmt.Sprintf("resolution(%d)", int(r))
	}
}

// ParseResolution converts a resolution name. The empty string means
// Character.
func ParseResolution(name string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "character", "char", "letter":
		return Character, nil
	case "word":
		return Word, nil
	case "line":
		return Line, nil
	}
	return Character, fmt.Errorf("unknown resolution %q", name)
}

// Config holds the matching policy of a Searcher.
type Config struct {
	// IncludeDataOnBoundary matches boxes that merely intersect the region.
	IncludeDataOnBoundary bool

	// UseMidpointsOnly matches boxes that overlap the region's midpoint or
	// are nested with it. It takes precedence over IncludeDataOnBoundary.
	UseMidpointsOnly bool

	// Resolution is the query granularity.
	Resolution Resolution

	// TreatGapsAsZoneBoundaries ends zones at wide horizontal gaps when
	// numbering letters.
	TreatGapsAsZoneBoundaries bool
}

// DefaultConfig returns boundary-inclusive character matching.
func DefaultConfig() Config {
	return Config{
		IncludeDataOnBoundary: true,
		Resolution:            Character,
	}
}

// matches applies the policy to a relation.
func (c Config) matches(r Relation) bool {
	switch {
	case c.UseMidpointsOnly:
		return r >= Overlapping
	case c.IncludeDataOnBoundary:
		return r > NotIntersecting
	default:
		return r == Contains
	}
}
