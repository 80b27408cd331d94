// internal\entity\value_entity.go
package entity

import (
	"strconv"
)

type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueNumber
	ValueText
	ValueBool
)

// Value is a scalar coming back from the analysis backend. KPIs and table
// cells are either numbers or strings; bool and null show up in table rows
// when the spreadsheet has empty or boolean cells.
type Value struct {
	Kind   ValueKind
	Number float64
	Unit   string // optional, numbers only
	Text   string
	Bool   bool
}

func Number(v float64) Value {
	return Value{Kind: ValueNumber, Number: v}
}

func NumberWithUnit(v float64, unit string) Value {
	return Value{Kind: ValueNumber, Number: v, Unit: unit}
}

func Text(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

func Bool(b bool) Value {
	return Value{Kind: ValueBool, Bool: b}
}

func Null() Value {
	return Value{}
}

func (v Value) IsNull() bool {
	return v.Kind == ValueNull
}

// String renders the value for display. Numbers use the shortest exact form
// (1000, -500, 12.5), null renders as an empty string.
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		s := strconv.FormatFloat(v.Number, 'f', -1, 64)
		if v.Unit != "" {
			return s + " " + v.Unit
		}
		return s
	case ValueText:
		return v.Text
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}
