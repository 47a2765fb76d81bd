package spatialtext

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/spatialtext/archive"
	"github.com/tsawler/spatialtext/config"
	"github.com/tsawler/spatialtext/docai"
	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/format"
	"github.com/tsawler/spatialtext/hocr"
	"github.com/tsawler/spatialtext/imageinfo"
	"github.com/tsawler/spatialtext/internal/logging"
	"github.com/tsawler/spatialtext/model"
	"github.com/tsawler/spatialtext/ocr"
	"github.com/tsawler/spatialtext/searcher"
	"github.com/tsawler/spatialtext/spatial"
	"github.com/tsawler/spatialtext/vision"
)

// images caches page image dimensions across loaders.
var images = imageinfo.NewService()

// Loader provides a fluent interface for loading and querying spatial
// strings. Each configuration method returns a new Loader instance, making
// it safe for concurrent use and allowing method chaining.
type Loader struct {
	// Source: a file, or an existing string
	filename string
	source   *spatial.String

	// Configuration
	options LoadOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Loader with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (l *Loader) clone() *Loader {
	return &Loader{
		filename: l.filename,
		source:   l.source,
		options:  l.options.clone(),
		err:      l.err,
	}
}

// ============================================================================
// Configuration Methods (return new Loader instance)
// ============================================================================

// Pages restricts results to the given page numbers. Multiple calls are
// cumulative.
//
// Example:
//
//	text, _, err := spatialtext.Open("scan.zip").Pages(1, 3).Text()
func (l *Loader) Pages(pages ...int) *Loader {
	newL := l.clone()
	newL.options.pages = append(newL.options.pages, pages...)
	return newL
}

// PageRange restricts results to pages start through end inclusive.
//
// Example:
//
//	text, _, err := spatialtext.Open("scan.zip").PageRange(5, 10).Text()
func (l *Loader) PageRange(start, end int) *Loader {
	newL := l.clone()
	for i := start; i <= end; i++ {
		newL.options.pages = append(newL.options.pages, i)
	}
	return newL
}

// Format forces the input format instead of detecting it.
func (l *Loader) Format(f format.Format) *Loader {
	newL := l.clone()
	newL.options.format = f
	return newL
}

// WithConfig applies process configuration: legacy zone conversion, zone
// gaps, searcher defaults and the archive engine name.
func (l *Loader) WithConfig(cfg config.Config) *Loader {
	newL := l.clone()
	if err := newL.options.apply(cfg); err != nil && newL.err == nil {
		newL.err = err
	}
	return newL
}

// ConvertLegacyHybridZones sets whether Hybrid strings stored before format
// version 12 are converted to OCR image coordinates on load. The default is
// true.
func (l *Loader) ConvertLegacyHybridZones(convert bool) *Loader {
	newL := l.clone()
	newL.options.convertLegacyHybridZones = convert
	return newL
}

// TreatGapsAsZoneBoundaries ends zones at wide horizontal gaps.
func (l *Loader) TreatGapsAsZoneBoundaries() *Loader {
	newL := l.clone()
	newL.options.treatGapsAsZoneBoundaries = true
	return newL
}

// Language sets the OCR language(s) for page images, such as "eng+deu".
func (l *Loader) Language(lang string) *Loader {
	newL := l.clone()
	newL.options.language = lang
	return newL
}

// Engine sets the engine name written into archive entry names.
func (l *Loader) Engine(name string) *Loader {
	newL := l.clone()
	newL.options.engine = name
	return newL
}

// Resolution sets the granularity of Search.
func (l *Loader) Resolution(r searcher.Resolution) *Loader {
	newL := l.clone()
	newL.options.searcher.Resolution = r
	return newL
}

// IncludeDataOnBoundary sets whether Search matches boxes that merely
// intersect the region.
func (l *Loader) IncludeDataOnBoundary(include bool) *Loader {
	newL := l.clone()
	newL.options.searcher.IncludeDataOnBoundary = include
	return newL
}

// UseMidpointsOnly makes Search match boxes that overlap the middle of the
// region.
func (l *Loader) UseMidpointsOnly() *Loader {
	newL := l.clone()
	newL.options.searcher.UseMidpointsOnly = true
	return newL
}

// OriginalCoordinates makes Search take and return original image
// coordinates instead of OCR image coordinates.
func (l *Loader) OriginalCoordinates() *Loader {
	newL := l.clone()
	newL.options.useOriginalCoords = true
	return newL
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Load reads the input and returns the selected pages as a string.
// Warnings report archive entries that could not be loaded.
//
// Example:
//
//	s, warnings, err := spatialtext.Open("scan.zip").Load()
func (l *Loader) Load() (*spatial.String, []Warning, error) {
	s, warnings, err := l.load()
	if err != nil {
		return nil, warnings, err
	}
	return s, warnings, nil
}

// Text returns the text of the selected pages.
//
// Example:
//
//	text, warnings, err := spatialtext.Open("scan.uss").Text()
func (l *Loader) Text() (string, []Warning, error) {
	s, warnings, err := l.load()
	if err != nil {
		return "", warnings, err
	}
	return s.Text(), warnings, nil
}

// Lines returns the text of every line, without line breaks.
func (l *Loader) Lines() ([]string, error) {
	return l.segments(func(s *spatial.String) []*spatial.String { return s.Lines() })
}

// Words returns the text of every word.
func (l *Loader) Words() ([]string, error) {
	return l.segments(func(s *spatial.String) []*spatial.String { return s.Words() })
}

// Paragraphs returns the text of every paragraph.
func (l *Loader) Paragraphs() ([]string, error) {
	return l.segments(func(s *spatial.String) []*spatial.String { return s.Paragraphs() })
}

// Zones returns the text of every zone.
func (l *Loader) Zones() ([]string, error) {
	gaps := l.options.treatGapsAsZoneBoundaries
	return l.segments(func(s *spatial.String) []*spatial.String { return s.Zones(gaps) })
}

func (l *Loader) segments(split func(*spatial.String) []*spatial.String) ([]string, error) {
	s, _, err := l.load()
	if err != nil {
		return nil, err
	}
	parts := split(s)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.Text()
	}
	return out, nil
}

// PageCount returns the number of pages with geometry. A string without
// geometry counts as one page, or zero when it is empty.
func (l *Loader) PageCount() (int, error) {
	s, _, err := l.load()
	if err != nil {
		return 0, err
	}
	if n := len(s.PageNumbers()); n > 0 {
		return n, nil
	}
	if s.IsEmpty() {
		return 0, nil
	}
	return 1, nil
}

// Info summarizes a loaded string.
type Info struct {
	Filename         string
	Format           format.Format
	Mode             spatial.Mode
	SourceDocName    string
	OCREngineVersion string
	Pages            []int
	Chars            int
	Lines            int
	Words            int
	// Confidence and AverageCharHeight are only set for Spatial strings.
	Confidence        *spatial.Confidence
	AverageCharHeight int
	// PageBounds holds the OCR image box enclosing the geometry of each page.
	PageBounds map[int]model.Rect
}

// Info loads the input and summarizes it.
func (l *Loader) Info() (*Info, error) {
	s, _, err := l.load()
	if err != nil {
		return nil, err
	}
	info := &Info{
		Filename:         l.filename,
		Format:           l.inputFormat(),
		Mode:             s.Mode(),
		SourceDocName:    s.SourceDocName(),
		OCREngineVersion: s.OCREngineVersion(),
		Pages:            s.PageNumbers(),
		Chars:            s.Len(),
		Lines:            len(s.LineRanges()),
		Words:            len(s.WordRanges()),
	}
	if s.Mode() == spatial.Spatial {
		if c, err := s.CharConfidence(); err == nil {
			info.Confidence = &c
		}
		if h, err := s.AverageCharHeight(); err == nil {
			info.AverageCharHeight = h
		}
	}
	if s.Mode() != spatial.NonSpatial {
		info.PageBounds = make(map[int]model.Rect, len(info.Pages))
		for _, p := range info.Pages {
			if b, err := s.OCRImagePageBounds(p); err == nil {
				info.PageBounds[p] = b
			}
		}
	}
	return info, nil
}

// Search returns the data inside rect. A page of 0 searches every page.
// Matching follows the Resolution, IncludeDataOnBoundary and
// UseMidpointsOnly settings.
//
// Example:
//
//	found, err := spatialtext.Open("scan.uss").
//	    Resolution(searcher.Word).
//	    Search(model.Rect{Left: 0, Top: 0, Right: 500, Bottom: 100}, 1)
func (l *Loader) Search(rect model.Rect, page int) (*spatial.String, error) {
	srch, err := l.Searcher()
	if err != nil {
		return nil, err
	}
	return srch.DataInRegion(searcher.Region{Rect: rect, Page: page}, false)
}

// Searcher loads the input and returns a searcher initialized over it.
func (l *Loader) Searcher() (*searcher.Searcher, error) {
	s, _, err := l.load()
	if err != nil {
		return nil, err
	}
	cfg := l.options.searcher
	cfg.TreatGapsAsZoneBoundaries = l.options.treatGapsAsZoneBoundaries
	srch := searcher.NewWithConfig(cfg)
	if err := srch.Init(s, l.options.useOriginalCoords); err != nil {
		return nil, err
	}
	return srch, nil
}

// Find returns the matches of pattern as strings that keep their geometry.
func (l *Loader) Find(pattern string, opts spatial.FindOptions) ([]*spatial.String, error) {
	s, _, err := l.load()
	if err != nil {
		return nil, err
	}
	return s.FindSubStrings(pattern, opts)
}

// SaveAs loads the input and writes it to path in the format implied by
// the extension: .uss, .zip, .hocr/.html or .txt.
//
// Example:
//
//	err := spatialtext.Open("page.json").SaveAs("page.hocr")
func (l *Loader) SaveAs(path string) error {
	s, _, err := l.load()
	if err != nil {
		return err
	}
	switch format.Detect(path) {
	case format.USS:
		return s.SaveToFile(path)
	case format.Archive:
		return archive.WriteFile(path, s, archive.WriteOptions{Engine: l.options.engine})
	case format.HOCR:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		opts := hocr.WriteOptions{TreatGapsAsZoneBoundaries: l.options.treatGapsAsZoneBoundaries}
		if err := hocr.Write(f, s, opts); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case format.Text:
		return os.WriteFile(path, []byte(s.Text()), 0o644)
	}
	return errs.New(errs.ErrUnsupportedFormat, "cannot write this output format", "path", path)
}

// ============================================================================
// Internal helpers
// ============================================================================

// load reads the input and applies the page selection.
func (l *Loader) load() (*spatial.String, []Warning, error) {
	if l.err != nil {
		return nil, nil, l.err
	}
	var warnings []Warning
	s, err := l.read(&warnings)
	if err != nil {
		return nil, warnings, err
	}
	s, err = l.selectPages(s)
	return s, warnings, err
}

// inputFormat returns the forced format, or the detected one for files.
func (l *Loader) inputFormat() format.Format {
	if l.options.format != format.Unknown || l.filename == "" {
		return l.options.format
	}
	f, _ := format.DetectFile(l.filename)
	return f
}

func (l *Loader) read(warnings *[]Warning) (*spatial.String, error) {
	if l.source != nil {
		return l.source.Clone(), nil
	}
	if l.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}

	f := l.options.format
	if f == format.Unknown {
		detected, err := format.DetectFile(l.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		f = detected
	}

	logging.Component("loader").WithFields(logrus.Fields{
		"file":   filepath.Base(l.filename),
		"format": f.String(),
	}).Debug("loading")

	load := spatial.LoadOptions{ConvertLegacyHybridZones: l.options.convertLegacyHybridZones}
	switch f {
	case format.USS:
		return spatial.ReadFile(l.filename, load)
	case format.Archive:
		return archive.ReadFile(l.filename, archive.ReadOptions{
			Load: load,
			OnSkip: func(name string, err error) {
				*warnings = append(*warnings, Warning{
					Type:    WarningSkippedEntry,
					Source:  name,
					Message: err.Error(),
				})
			},
		})
	case format.VisionJSON:
		return vision.ReadFile(l.filename, vision.Options{})
	case format.DocumentAI:
		return docai.ReadFile(l.filename, docai.Options{})
	case format.HOCR:
		return hocr.ReadFile(l.filename, hocr.Options{})
	case format.Text:
		data, err := os.ReadFile(l.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read text: %w", err)
		}
		return spatial.NewNonSpatial(string(data), l.filename), nil
	}
	if f.IsImage() {
		return l.recognize()
	}
	return nil, errs.New(errs.ErrUnsupportedFormat, "unsupported file format", "format", f.String())
}

func (l *Loader) recognize() (*spatial.String, error) {
	info, err := images.PageInfo(l.filename, spatial.OrientNone, 0)
	if err != nil {
		return nil, err
	}
	client, err := ocr.New()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if l.options.language != "" {
		if err := client.SetLanguage(l.options.language); err != nil {
			return nil, fmt.Errorf("failed to set OCR language: %w", err)
		}
	}
	return client.RecognizeFile(l.filename, ocr.Options{PageInfo: info})
}

// selectPages keeps the requested pages. A string without geometry only
// has page 1.
func (l *Loader) selectPages(s *spatial.String) (*spatial.String, error) {
	if len(l.options.pages) == 0 {
		return s, nil
	}

	available := map[int]bool{}
	for _, p := range s.PageNumbers() {
		available[p] = true
	}
	if s.Mode() == spatial.NonSpatial {
		available[1] = true
	}

	for _, p := range l.options.pages {
		if !available[p] {
			return nil, errs.New(errs.ErrInvalidArgument, fmt.Sprintf("page %d not found", p),
				"page", p, "available", strings.Trim(fmt.Sprint(s.PageNumbers()), "[]"))
		}
	}
	if s.Mode() == spatial.NonSpatial {
		return s, nil
	}
	return s.SelectPages(l.options.pages...)
}
