package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tsawler/spatialtext"
	"github.com/tsawler/spatialtext/model"
	"github.com/tsawler/spatialtext/searcher"
	"github.com/tsawler/spatialtext/spatial"
)

func newInfoCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Summarize a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := opts.loader(args[0]).Info()
			if err != nil {
				return err
			}
			writeInfo(cmd.OutOrStdout(), info)
			return nil
		},
	}
}

func writeInfo(w io.Writer, info *spatialtext.Info) {
	fmt.Fprintf(w, "File:        %s\n", info.Filename)
	fmt.Fprintf(w, "Format:      %s\n", info.Format)
	fmt.Fprintf(w, "Mode:        %s\n", info.Mode)
	if info.SourceDocName != "" {
		fmt.Fprintf(w, "Source:      %s\n", info.SourceDocName)
	}
	if info.OCREngineVersion != "" {
		fmt.Fprintf(w, "Engine:      %s\n", info.OCREngineVersion)
	}
	fmt.Fprintf(w, "Pages:       %s\n", joinInts(info.Pages))
	fmt.Fprintf(w, "Characters:  %d\n", info.Chars)
	fmt.Fprintf(w, "Words:       %d\n", info.Words)
	fmt.Fprintf(w, "Lines:       %d\n", info.Lines)
	if info.Confidence != nil {
		c := info.Confidence
		fmt.Fprintf(w, "Confidence:  min %d, max %d, avg %d\n", c.Min, c.Max, c.Average)
	}
	if info.AverageCharHeight > 0 {
		fmt.Fprintf(w, "Char height: %d\n", info.AverageCharHeight)
	}
	for _, p := range info.Pages {
		if b, ok := info.PageBounds[p]; ok {
			fmt.Fprintf(w, "Bounds:      page %d %s\n", p, formatRect(b))
		}
	}
}

func newTextCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "text FILE",
		Short: "Print the text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, warnings, err := opts.loader(args[0]).Text()
			writeWarnings(cmd.ErrOrStderr(), warnings)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newSegmentCmd(opts *globalOptions, name, short string, split func(*spatialtext.Loader) ([]string, error)) *cobra.Command {
	blockSep := name == "paragraphs" || name == "zones"
	return &cobra.Command{
		Use:   name + " FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := split(opts.loader(args[0]))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, p := range parts {
				if blockSep && i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintln(w, p)
			}
			return nil
		},
	}
}

func newPagesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pages FILE",
		Short: "List pages with their dimensions and orientation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, warnings, err := opts.loader(args[0]).Load()
			writeWarnings(cmd.ErrOrStderr(), warnings)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, p := range s.PageNumbers() {
				info, ok := s.PageInfo(p)
				if !ok {
					fmt.Fprintf(w, "%d\t(no page info)\n", p)
					continue
				}
				fmt.Fprintf(w, "%d\t%s\n", p, info)
			}
			return nil
		},
	}
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var (
		rectFlag   string
		page       int
		resolution string
		midpoints  bool
		strict     bool
		original   bool
	)
	cmd := &cobra.Command{
		Use:   "search FILE",
		Short: "Print the text inside a rectangle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rect, err := parseRect(rectFlag)
			if err != nil {
				return err
			}
			l := opts.loader(args[0])
			if resolution != "" {
				res, err := searcher.ParseResolution(resolution)
				if err != nil {
					return err
				}
				l = l.Resolution(res)
			}
			if midpoints {
				l = l.UseMidpointsOnly()
			}
			if strict {
				l = l.IncludeDataOnBoundary(false)
			}
			if original {
				l = l.OriginalCoordinates()
			}
			found, err := l.Search(rect, page)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), found.Text())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&rectFlag, "rect", "", "Region as left,top,right,bottom")
	f.IntVar(&page, "page", 0, "Page to search; 0 searches every page")
	f.StringVar(&resolution, "resolution", "", "character, word or line (overrides the configuration)")
	f.BoolVar(&midpoints, "midpoints", false, "Match boxes overlapping the middle of the region")
	f.BoolVar(&strict, "strict", false, "Match only boxes fully inside the region")
	f.BoolVar(&original, "original", false, "The region is in original image coordinates")
	cmd.MarkFlagRequired("rect")
	return cmd
}

func newFindCmd(opts *globalOptions) *cobra.Command {
	var (
		regexp     bool
		ignoreCase bool
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "find FILE PATTERN",
		Short: "Print every match with its page and bounds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := opts.loader(args[0]).Find(args[1], spatial.FindOptions{
				Regexp:     regexp,
				IgnoreCase: ignoreCase,
				Limit:      limit,
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, m := range found {
				if b, err := m.OCRImagePageBounds(m.FirstPageNumber()); err == nil {
					fmt.Fprintf(w, "%d\t%s\t%s\n", m.FirstPageNumber(), formatRect(b), m.Text())
					continue
				}
				fmt.Fprintf(w, "-\t-\t%s\n", m.Text())
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&regexp, "regexp", "e", false, "PATTERN is a regular expression")
	f.BoolVarP(&ignoreCase, "ignore-case", "i", false, "Match without regard to case")
	f.IntVar(&limit, "limit", 0, "Stop after this many matches")
	return cmd
}

func newConvertCmd(opts *globalOptions) *cobra.Command {
	var engine string
	cmd := &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "Convert to .uss, .zip, .hocr or .txt by the output extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := opts.loader(args[0])
			if engine != "" {
				l = l.Engine(engine)
			}
			return l.SaveAs(args[1])
		},
	}
	cmd.Flags().StringVar(&engine, "engine", "", "Engine name for archive entries (overrides the configuration)")
	return cmd
}

// ============================================================================
// Helpers
// ============================================================================

func writeWarnings(w io.Writer, warnings []spatialtext.Warning) {
	for _, warn := range warnings {
		fmt.Fprintln(w, "warning:", warn)
	}
}

// parseRect parses "left,top,right,bottom".
func parseRect(s string) (model.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.Rect{}, fmt.Errorf("invalid rectangle %q: want left,top,right,bottom", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return model.Rect{}, fmt.Errorf("invalid rectangle %q: %w", s, err)
		}
		v[i] = n
	}
	r := model.Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}
	if r.Right < r.Left || r.Bottom < r.Top {
		return model.Rect{}, fmt.Errorf("invalid rectangle %q: right/bottom before left/top", s)
	}
	return r, nil
}

func formatRect(r model.Rect) string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Left, r.Top, r.Right, r.Bottom)
}

func joinInts(v []int) string {
	if len(v) == 0 {
		return "-"
	}
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
