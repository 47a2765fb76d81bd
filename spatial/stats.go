package spatial

// Confidence summarizes character confidences.
type Confidence struct {
	Min     int
	Max     int
	Average int
}

// AverageCharWidth returns the mean width of spatial non-whitespace letters.
func (s *String) AverageCharWidth() (int, error) {
	if s.mode != Spatial {
		return 0, s.wrongMode("AverageCharWidth", Spatial)
	}
	total, n := 0, 0
	for _, l := range s.letters {
		if l.IsSpatial && !l.IsWhitespace() {
			total += l.Width()
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return total / n, nil
}

// AverageCharHeight returns the mean height of spatial non-whitespace
// letters.
func (s *String) AverageCharHeight() (int, error) {
	if s.mode != Spatial {
		return 0, s.wrongMode("AverageCharHeight", Spatial)
	}
	return s.averageHeight(), nil
}

// AverageLineHeight returns the mean height of the line bounding boxes.
func (s *String) AverageLineHeight() (int, error) {
	if s.mode != Spatial {
		return 0, s.wrongMode("AverageLineHeight", Spatial)
	}
	total, n := 0, 0
	for _, r := range s.LineRanges() {
		for _, pb := range s.pageBounds(r) {
			total += pb.bounds.Height()
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return total / n, nil
}

// CharConfidence summarizes the confidence of spatial non-whitespace
// letters.
func (s *String) CharConfidence() (Confidence, error) {
	if s.mode != Spatial {
		return Confidence{}, s.wrongMode("CharConfidence", Spatial)
	}
	c := Confidence{Min: MaxConfidence}
	total, n := 0, 0
	for _, l := range s.letters {
		if !l.IsSpatial || l.IsWhitespace() {
			continue
		}
		conf := int(l.CharConfidence)
		c.Min = min(c.Min, conf)
		c.Max = max(c.Max, conf)
		total += conf
		n++
	}
	if n == 0 {
		return Confidence{}, nil
	}
	c.Average = total / n
	return c, nil
}

// FontSizeDistribution counts spatial non-whitespace letters per font size.
// Letters without a font size are not counted.
func (s *String) FontSizeDistribution() (map[int]int, error) {
	if s.mode != Spatial {
		return nil, s.wrongMode("FontSizeDistribution", Spatial)
	}
	dist := map[int]int{}
	for _, l := range s.letters {
		if l.IsSpatial && !l.IsWhitespace() && l.FontSize > 0 {
			dist[int(l.FontSize)]++
		}
	}
	return dist, nil
}
