package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for length and line-height.

// Unit represents the original unit of a length value as written in a style declaration.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitPX               // CSS pixels (1/96 in)
	UnitPT               // points (1/72 in)
	UnitMM               // millimeters
	UnitEM               // multiples of the current font size
)

// Conversion constants between px, pt and mm.
const (
	PxToPt = 0.75
	PtToPx = 1.0 / PxToPt
	PxToMm = 25.4 / 96.0
	MmToPx = 1.0 / PxToMm
	PtToMm = 25.4 / 72.0
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitEM:
		return "em"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPX converts the length to px. em is resolved against fontSize (px);
// unit-less values are taken as px, matching how the reader treats bare numbers.
func (l Length) ToPX(fontSize float64) float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitMM:
		return l.Value * MmToPx
	case UnitEM:
		return l.Value * fontSize
	default:
		return l.Value
	}
}

// ParseRawLengthStr 解析带单位的长度字符串，保留原始单位。
func ParseRawLengthStr(value string) Length {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{Value: 0, Unit: UnitNone}
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"em", UnitEM}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Value: 0, Unit: UnitNone}
	}
	return Length{Value: f, Unit: unit}
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves original author intent: either a factor (1.5) or an absolute length (24px).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight 解析 line-height 取值：无单位或带 x 后缀视为倍数，其余视为绝对长度。
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "normal" {
		return LineHeightSpec{}, false
	}
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil {
		if f <= 0 {
			return LineHeightSpec{}, false
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	l := ParseRawLengthStr(v)
	if l.Unit == UnitNone || l.Value <= 0 {
		return LineHeightSpec{}, false
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// Multiplier 将行高换算成相对 fontSize（px）的倍数，Style 只保存倍数。
func (s LineHeightSpec) Multiplier(fontSize float64) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return s.Factor
	case LineHeightAbsolute:
		if fontSize <= 0 {
			return DefaultLineHeight
		}
		return s.Len.ToPX(fontSize) / fontSize
	default:
		return DefaultLineHeight
	}
}
