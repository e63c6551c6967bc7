package weasyreport

import (
	"math"
	"strconv"
	"strings"
)

// Legacy keyed-argument names, as passed to the wkhtmltopdf command line.
const (
	ArgMarginTop    = "--margin-top"
	ArgMarginBottom = "--margin-bottom"
	ArgMarginLeft   = "--margin-left"
	ArgMarginRight  = "--margin-right"
	ArgPageWidth    = "--page-width"
	ArgPageHeight   = "--page-height"
)

// PaperFormat holds page geometry in millimeters.
// A nil field means "not set": no CSS rule is emitted for it.
type PaperFormat struct {
	MarginTop    *float64
	MarginBottom *float64
	MarginLeft   *float64
	MarginRight  *float64
	PageWidth    *float64
	PageHeight   *float64
	Landscape    bool
}

// MM returns a pointer to a millimeter value, for building PaperFormat
// literals.
func MM(v float64) *float64 {
	return &v
}

// hasExplicitSize reports whether both page dimensions are set.
func (p PaperFormat) hasExplicitSize() bool {
	return p.PageWidth != nil && p.PageHeight != nil
}

// PaperFormatFromArgs builds a PaperFormat from the legacy keyed-argument
// dictionary. Malformed values are treated as absent rather than failing.
func PaperFormatFromArgs(args map[string]any, landscape bool) PaperFormat {
	return PaperFormat{
		MarginTop:    argMM(args, ArgMarginTop),
		MarginBottom: argMM(args, ArgMarginBottom),
		MarginLeft:   argMM(args, ArgMarginLeft),
		MarginRight:  argMM(args, ArgMarginRight),
		PageWidth:    argMM(args, ArgPageWidth),
		PageHeight:   argMM(args, ArgPageHeight),
		Landscape:    landscape,
	}
}

// argMM reads one numeric argument. Accepts Go numbers, numeric strings and
// strings with an "mm" suffix. Negative, NaN and infinite values are absent.
func argMM(args map[string]any, key string) *float64 {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil
	}

	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case int32:
		v = float64(x)
	case uint:
		v = float64(x)
	case string:
		s := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(x)), "mm")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		v = f
	default:
		return nil
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}

// formatMM prints a millimeter value in its shortest form ("10", "12.5").
func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "mm"
}
