// Package archive stores multi-page strings as zip archives with one entry
// per page.
//
// Page entries are named NNNN.<engine>.uss for stored strings and NNNN.json
// for Cloud Vision annotations, where NNNN is the zero-padded page number.
// The optional entry 0000.json records the source document name. Pages are
// loaded independently and joined with page breaks.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/internal/logging"
	"github.com/tsawler/spatialtext/spatial"
	"github.com/tsawler/spatialtext/vision"
)

// MetaEntry is the name of the metadata entry.
const MetaEntry = "0000.json"

// DefaultEngine is the engine name used when none is given.
const DefaultEngine = "tesseract"

// maxEntrySize caps the decompressed size of a single entry.
var maxEntrySize int64 = 1 << 30

// Meta is the content of the metadata entry.
type Meta struct {
	SourceDocName string `json:"sourceDocName"`
	Engine        string `json:"engine,omitempty"`
	Pages         int    `json:"pages,omitempty"`
}

// EntryKind tells how a page entry is decoded.
type EntryKind int

const (
	// StoredString entries hold a saved spatial string.
	StoredString EntryKind = iota
	// VisionJSON entries hold a Cloud Vision annotation of one page.
	VisionJSON
)

// Entry is a parsed page entry name.
type Entry struct {
	Page   int
	Engine string
	Kind   EntryKind
}

// EntryName returns the name of a stored-string page entry.
func EntryName(page int, engine string) string {
	return fmt.Sprintf("%04d.%s.uss", page, engine)
}

// ParseEntryName parses a page entry name. Directory prefixes are ignored.
func ParseEntryName(name string) (Entry, bool) {
	parts := strings.Split(path.Base(name), ".")
	if len(parts) < 2 || len(parts[0]) != 4 {
		return Entry{}, false
	}
	page, err := strconv.Atoi(parts[0])
	if err != nil || page < 1 {
		return Entry{}, false
	}
	switch {
	case len(parts) == 2 && strings.EqualFold(parts[1], "json"):
		return Entry{Page: page, Kind: VisionJSON}, true
	case len(parts) == 3 && parts[1] != "" && strings.EqualFold(parts[2], "uss"):
		return Entry{Page: page, Engine: parts[1], Kind: StoredString}, true
	}
	return Entry{}, false
}

// WriteOptions controls Write.
type WriteOptions struct {
	// Engine names the OCR engine in entry names. Empty means DefaultEngine.
	Engine string
}

// Write stores s with one entry per page. A NonSpatial string is stored as
// page 1, and a Hybrid string whose text cannot be split at page breaks is
// stored whole under its first page.
func Write(w io.Writer, s *spatial.String, opts WriteOptions) error {
	engine := opts.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	if strings.ContainsAny(engine, `./\`) {
		return errs.New(errs.ErrInvalidArgument, "invalid engine name", "engine", engine)
	}

	pages := []*spatial.String{s}
	if s.Mode() != spatial.NonSpatial {
		var err error
		if pages, err = s.Pages(); err != nil {
			return err
		}
	}

	zw := zip.NewWriter(w)
	meta := Meta{SourceDocName: s.SourceDocName(), Engine: engine, Pages: len(pages)}
	if err := writeJSON(zw, MetaEntry, meta); err != nil {
		return err
	}
	for _, p := range pages {
		num := p.FirstPageNumber()
		if num == 0 {
			num = 1
		}
		f, err := zw.Create(EntryName(num, engine))
		if err != nil {
			return fmt.Errorf("creating page %d entry: %w", num, err)
		}
		if err := p.Save(f); err != nil {
			return fmt.Errorf("writing page %d: %w", num, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}
	s.SetDirty(false)
	return nil
}

// WriteFile stores s in a new archive at path.
func WriteFile(path string, s *spatial.String, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	if err := Write(f, s, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// ReadOptions controls Read.
type ReadOptions struct {
	Load spatial.LoadOptions
	// OnSkip, if set, is called for every entry that is not loaded.
	OnSkip func(name string, err error)
}

// DefaultReadOptions returns the options used by ReadFile callers that do
// not care.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Load: spatial.DefaultLoadOptions()}
}

type pageEntry struct {
	Entry
	file *zip.File
}

// Read loads every page entry of the archive in page order and joins them.
// Entries that cannot be loaded are logged and skipped; an archive in which
// no page could be loaded is an error.
func Read(r io.ReaderAt, size int64, opts ReadOptions) (*spatial.String, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrCorruptData, "not a zip archive")
	}
	log := logging.Component("archive")

	skipped := 0
	skip := func(name string, err error) {
		skipped++
		log.WithFields(logrus.Fields{"entry": name, "error": err}).Warn("skipping archive entry")
		if opts.OnSkip != nil {
			opts.OnSkip(name, err)
		}
	}

	var meta Meta
	var entries []pageEntry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if path.Base(f.Name) == MetaEntry {
			if err := readJSON(f, &meta); err != nil {
				skip(f.Name, err)
			}
			continue
		}
		e, ok := ParseEntryName(f.Name)
		if !ok {
			skip(f.Name, errs.New(errs.ErrUnsupportedFormat, "not a page entry name"))
			continue
		}
		entries = append(entries, pageEntry{Entry: e, file: f})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Page < entries[j].Page })

	var parts []*spatial.String
	for _, e := range entries {
		p, err := readPage(e, meta.SourceDocName, opts.Load)
		if err != nil {
			skip(e.file.Name, err)
			continue
		}
		parts = append(parts, p)
	}

	log.WithFields(logrus.Fields{"pages": len(parts), "skipped": skipped}).Debug("read archive")

	if len(parts) == 0 {
		if skipped > 0 {
			return nil, errs.New(errs.ErrCorruptData, "no page of the archive could be loaded", "skipped", skipped)
		}
		return spatial.NewNonSpatial("", meta.SourceDocName), nil
	}
	out, err := spatial.Concat(parts, true)
	if err != nil {
		return nil, err
	}
	if meta.SourceDocName != "" {
		out.SetSourceDocName(meta.SourceDocName)
	}
	out.SetDirty(false)
	return out, nil
}

// ReadFile loads the archive at path.
func ReadFile(path string, opts ReadOptions) (*spatial.String, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	return Read(f, info.Size(), opts)
}

func readPage(e pageEntry, doc string, load spatial.LoadOptions) (*spatial.String, error) {
	data, err := readAll(e.file)
	if err != nil {
		return nil, err
	}
	switch e.Kind {
	case VisionJSON:
		ann, err := vision.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return vision.Import(ann, vision.Options{SourceDocName: doc, FirstPage: e.Page})
	default:
		return spatial.Read(bytes.NewReader(data), load)
	}
}

func readJSON(f *zip.File, v any) error {
	data, err := readAll(f)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errs.Wrap(err, errs.ErrCorruptData, "bad metadata entry")
	}
	return nil
}

func readAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrCorruptData, "cannot open entry")
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrCorruptData, "cannot read entry")
	}
	if int64(len(data)) > maxEntrySize {
		return nil, errs.New(errs.ErrCorruptData, "entry too large", "limit", maxEntrySize)
	}
	return data, nil
}
