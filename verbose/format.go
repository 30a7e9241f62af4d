package verbose

import (
	"math"
	"strconv"
	"strings"
)

// Precisions, in significant digits, of the different output sections.
const (
	tablePrecision    = 4
	depositPrecision  = 3
	extendedPrecision = 16
)

const (
	outOfWorld   = "OutOfWorld"
	undefined    = "Undefined"
	killedMarker = "isKilled"
)

var (
	trackBanner = strings.Repeat("*", 105)
	blockRule   = "   " + strings.Repeat("-", 86)
)

// num renders v with prec significant digits, right-aligned in a field of
// the given width. It never pads a value that is already wider than width.
func num(v float64, width, prec int) string {
	switch {
	case math.IsNaN(v):
		return pad("nan", width)
	case math.IsInf(v, 1):
		return pad("inf", width)
	case math.IsInf(v, -1):
		return pad("-inf", width)
	}

	if prec < 1 {
		prec = 1
	}

	return pad(strconv.FormatFloat(v, 'g', prec, 64), width)
}

// integer renders n right-aligned in a field of the given width.
func integer(n int, width int) string {
	return pad(strconv.Itoa(n), width)
}

// pad right-aligns s in a field of the given width.
func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}

	return strings.Repeat(" ", width-len(s)) + s
}
