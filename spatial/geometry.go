package spatial

import (
	"github.com/tsawler/spatialtext/errs"
	"github.com/tsawler/spatialtext/model"
)

// OCRImageRasterZones returns the zones describing the string in OCR image
// coordinates: the stored zones of a Hybrid string, or one zone per line and
// page of a Spatial string.
func (s *String) OCRImageRasterZones() ([]RasterZone, error) {
	if s.mode == NonSpatial {
		return nil, s.wrongMode("OCRImageRasterZones", Spatial, Hybrid)
	}
	return s.ocrZones(), nil
}

// OriginalImageRasterZones returns OCRImageRasterZones converted into the
// coordinates of the original, unrotated page images.
func (s *String) OriginalImageRasterZones() ([]RasterZone, error) {
	zones, err := s.OCRImageRasterZones()
	if err != nil {
		return nil, err
	}
	return s.translateZones(zones, func(int) *PageInfo { return nil })
}

// TranslatedRasterZones returns OCRImageRasterZones converted into the
// coordinate systems described by target. Pages missing from target are
// converted to original image coordinates.
func (s *String) TranslatedRasterZones(target PageInfoMap) ([]RasterZone, error) {
	zones, err := s.OCRImageRasterZones()
	if err != nil {
		return nil, err
	}
	return s.translateZones(zones, func(page int) *PageInfo {
		if info, ok := target.Get(page); ok {
			return &info
		}
		return nil
	})
}

func (s *String) translateZones(zones []RasterZone, dest func(page int) *PageInfo) ([]RasterZone, error) {
	out := make([]RasterZone, len(zones))
	for i, z := range zones {
		info, ok := s.pageInfos.Get(z.Page)
		if !ok {
			return nil, errs.New(errs.ErrMissingPageInfo, "zone references a page without page info", "page", z.Page)
		}
		t, err := newPageTransform(info, dest(z.Page))
		if err != nil {
			return nil, err
		}
		out[i] = t.zone(z)
	}
	return out, nil
}

// OriginalImageLetters returns a copy of the letters with spatial bounds
// converted into original image coordinates.
func (s *String) OriginalImageLetters() ([]Letter, error) {
	if s.mode != Spatial {
		return nil, s.wrongMode("OriginalImageLetters", Spatial)
	}
	transforms := map[int]*pageTransform{}
	out := make([]Letter, len(s.letters))
	for i, l := range s.letters {
		if !l.IsSpatial {
			out[i] = l
			continue
		}
		t, ok := transforms[l.Page()]
		if !ok {
			info, found := s.pageInfos.Get(l.Page())
			if !found {
				return nil, errs.New(errs.ErrMissingPageInfo, "letter references a page without page info",
					"index", i, "page", l.Page())
			}
			var err error
			if t, err = newPageTransform(info, nil); err != nil {
				return nil, err
			}
			transforms[l.Page()] = t
		}
		out[i] = t.letter(l)
	}
	return out, nil
}

// OCRImageBounds returns the box enclosing all geometry in OCR image
// coordinates. Boxes from every page are combined, so the result is only
// meaningful for a single-page string; see OCRImagePageBounds.
func (s *String) OCRImageBounds() (model.Rect, error) {
	switch s.mode {
	case Spatial:
		return unionLetterBounds(s.letters), nil
	case Hybrid:
		return unionZoneBounds(s.zones), nil
	}
	return model.Rect{}, s.wrongMode("OCRImageBounds", Spatial, Hybrid)
}

// OriginalImageBounds returns the box enclosing all geometry in original
// image coordinates. Like OCRImageBounds it combines every page.
func (s *String) OriginalImageBounds() (model.Rect, error) {
	switch s.mode {
	case Spatial:
		letters, err := s.OriginalImageLetters()
		if err != nil {
			return model.Rect{}, err
		}
		return unionLetterBounds(letters), nil
	case Hybrid:
		zones, err := s.OriginalImageRasterZones()
		if err != nil {
			return model.Rect{}, err
		}
		return unionZoneBounds(zones), nil
	}
	return model.Rect{}, s.wrongMode("OriginalImageBounds", Spatial, Hybrid)
}

// OCRImagePageBounds returns the box enclosing the geometry on page in OCR
// image coordinates. It fails with ErrInvalidArgument when nothing lies on
// the page.
func (s *String) OCRImagePageBounds(page int) (model.Rect, error) {
	switch s.mode {
	case Spatial:
		return pageLetterBounds(s.letters, page)
	case Hybrid:
		return pageZoneBounds(s.zones, page)
	}
	return model.Rect{}, s.wrongMode("OCRImagePageBounds", Spatial, Hybrid)
}

// OriginalImagePageBounds is OCRImagePageBounds in original image
// coordinates.
func (s *String) OriginalImagePageBounds(page int) (model.Rect, error) {
	switch s.mode {
	case Spatial:
		letters, err := s.OriginalImageLetters()
		if err != nil {
			return model.Rect{}, err
		}
		return pageLetterBounds(letters, page)
	case Hybrid:
		zones, err := s.OriginalImageRasterZones()
		if err != nil {
			return model.Rect{}, err
		}
		return pageZoneBounds(zones, page)
	}
	return model.Rect{}, s.wrongMode("OriginalImagePageBounds", Spatial, Hybrid)
}

func pageLetterBounds(letters []Letter, page int) (model.Rect, error) {
	var on []Letter
	for _, l := range letters {
		if l.IsSpatial && l.Page() == page {
			on = append(on, l)
		}
	}
	if len(on) == 0 {
		return model.Rect{}, errs.New(errs.ErrInvalidArgument, "no geometry on page", "page", page)
	}
	return unionLetterBounds(on), nil
}

func pageZoneBounds(zones []RasterZone, page int) (model.Rect, error) {
	var on []RasterZone
	for _, z := range zones {
		if z.Page == page {
			on = append(on, z)
		}
	}
	if len(on) == 0 {
		return model.Rect{}, errs.New(errs.ErrInvalidArgument, "no geometry on page", "page", page)
	}
	return unionZoneBounds(on), nil
}

// Offset shifts all geometry by dx, dy. Letter coordinates stop at zero.
func (s *String) Offset(dx, dy int) {
	if s.mode == NonSpatial || (dx == 0 && dy == 0) {
		return
	}
	for i, l := range s.letters {
		if l.IsSpatial {
			s.letters[i].SetBounds(l.Bounds().Offset(dx, dy))
		}
	}
	for i, z := range s.zones {
		s.zones[i] = z.Offset(dx, dy)
	}
	s.dirty = true
}

func unionLetterBounds(letters []Letter) model.Rect {
	var out model.Rect
	first := true
	for _, l := range letters {
		if !l.IsSpatial {
			continue
		}
		if first {
			out = l.Bounds()
			first = false
			continue
		}
		out = out.Union(l.Bounds())
	}
	return out
}

func unionZoneBounds(zones []RasterZone) model.Rect {
	var out model.Rect
	for i, z := range zones {
		if i == 0 {
			out = z.RectangularBounds()
			continue
		}
		out = out.Union(z.RectangularBounds())
	}
	return out
}
