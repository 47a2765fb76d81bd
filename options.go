package spatialtext

import (
	"github.com/tsawler/spatialtext/archive"
	"github.com/tsawler/spatialtext/config"
	"github.com/tsawler/spatialtext/format"
	"github.com/tsawler/spatialtext/searcher"
)

// LoadOptions holds configuration for loading and querying.
type LoadOptions struct {
	// Page selection (page numbers as stored, 1-based)
	pages []int

	// Forced input format; Unknown means detect
	format format.Format

	// Loading
	convertLegacyHybridZones bool
	language                 string

	// Segmentation and search
	treatGapsAsZoneBoundaries bool
	useOriginalCoords         bool
	searcher                  searcher.Config

	// Output
	engine string
}

// defaultOptions returns the default options.
func defaultOptions() LoadOptions {
	return LoadOptions{
		pages:                    nil, // nil means all pages
		format:                   format.Unknown,
		convertLegacyHybridZones: true,
		language:                 "eng",
		searcher:                 searcher.DefaultConfig(),
		engine:                   archive.DefaultEngine,
	}
}

// apply copies the settings of cfg.
func (o *LoadOptions) apply(cfg config.Config) error {
	res, err := searcher.ParseResolution(cfg.Searcher.Resolution)
	if err != nil {
		return err
	}
	o.convertLegacyHybridZones = cfg.ConvertLegacyHybridZones
	o.treatGapsAsZoneBoundaries = cfg.Zones.TreatGapsAsZoneBoundaries
	o.searcher.IncludeDataOnBoundary = cfg.Searcher.IncludeDataOnBoundary
	o.searcher.UseMidpointsOnly = cfg.Searcher.UseMidpointsOnly
	o.searcher.Resolution = res
	if cfg.EngineName != "" {
		o.engine = cfg.EngineName
	}
	return nil
}

// clone creates a deep copy of LoadOptions.
func (o LoadOptions) clone() LoadOptions {
	newOpts := o

	// Deep copy pages slice
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}

	return newOpts
}
