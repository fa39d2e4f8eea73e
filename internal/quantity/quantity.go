// Package quantity parses and formats free-text ingredient amounts such as
// "2 EL" or "1,5 kg" and scales them between serving counts.
package quantity

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DisplayDecimals is the precision used when showing amounts to a cook.
	DisplayDecimals = 2
	// AuthoringDecimals is the precision used while a recipe is being written.
	AuthoringDecimals = 1
)

// Quantity is a numeric amount with an optional unit. An empty unit means
// a plain count ("3 Eier" resolves to Eier with unit "").
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// leadingNumber matches an amount at the very start of the text. Both "."
// and "," are accepted as the decimal separator.
var leadingNumber = regexp.MustCompile(`^(\d+(?:[.,]\d+)?|[.,]\d+)\s*(.*)$`)

// ParseStrict splits text into its leading number and the trailing unit.
// The boolean is false when text does not start with a number; the
// returned Quantity is then the permissive fallback used by Parse.
func ParseStrict(text string) (Quantity, bool) {
	trimmed := strings.TrimSpace(text)
	m := leadingNumber.FindStringSubmatch(trimmed)
	if m == nil {
		return Quantity{Value: 1, Unit: trimmed}, false
	}

	value, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return Quantity{Value: 1, Unit: trimmed}, false
	}
	return Quantity{Value: value, Unit: strings.TrimSpace(m[2])}, true
}

// Parse never fails: text without a leading number is treated as a unit
// with value 1, and an empty string yields {1, ""}.
func Parse(text string) Quantity {
	q, _ := ParseStrict(text)
	return q
}

// Format renders value with no decimals when it is whole and with the
// given number of decimals otherwise, followed by the unit if there is one.
func Format(value float64, unit string, decimals int) string {
	var num string
	if isWhole(value) {
		num = strconv.FormatFloat(value, 'f', 0, 64)
	} else {
		num = strconv.FormatFloat(value, 'f', decimals, 64)
	}

	unit = strings.TrimSpace(unit)
	if unit == "" {
		return num
	}
	return num + " " + unit
}

// String formats q at display precision.
func (q Quantity) String() string {
	return Format(q.Value, q.Unit, DisplayDecimals)
}

// IsFinite reports whether the value can be rendered.
func (q Quantity) IsFinite() bool {
	return IsFinite(q.Value)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isWhole(v float64) bool {
	return IsFinite(v) && v == math.Trunc(v)
}
