package layout

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/gogpu/fpvosd"
)

// Variant is the font variant (symbol set) of a flight controller firmware.
type Variant uint8

const (
	Generic Variant = iota
	Betaflight
	INAV
	Ardupilot
	KISSUltra
	Unknown

	variantCount
)

// Variants lists every registered variant.
var Variants = []Variant{Generic, Betaflight, INAV, Ardupilot, KISSUltra, Unknown}

type variantInfo struct {
	name  string
	ident string // font file ident, empty for the generic font
	wsa   string // 4-byte WSA header ident
	items []Item
}

// variantTable is indexed by Variant; its length is pinned to variantCount so
// a new variant cannot be added without extending the table.
var variantTable = [variantCount]variantInfo{
	Generic:    {name: "Generic"},
	Betaflight: {name: "Betaflight", ident: "bf", wsa: "BTFL"},
	INAV:       {name: "INAV", ident: "inav", wsa: "INAV", items: inavItems},
	Ardupilot:  {name: "Ardupilot", ident: "ardu", wsa: "ARDU", items: ardupilotItems},
	KISSUltra:  {name: "KISSUltra", ident: "ultra", wsa: "ULTR"},
	Unknown:    {name: "Unknown"},
}

func (v Variant) info() variantInfo {
	if v >= variantCount {
		return variantTable[Unknown]
	}
	return variantTable[v]
}

func (v Variant) String() string {
	if v >= variantCount {
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
	return variantTable[v].name
}

// Ident returns the font file ident of the variant. ok is false for variants
// that only have the generic font.
func (v Variant) Ident() (ident string, ok bool) {
	ident = v.info().ident
	return ident, ident != ""
}

// FromDJIByte maps the font variant byte of a DJI OSD header.
func FromDJIByte(b uint8) Variant {
	switch b {
	case 0:
		return Generic
	case 1:
		return Betaflight
	case 2:
		return INAV
	case 3:
		return Ardupilot
	case 4:
		return KISSUltra
	default:
		return Unknown
	}
}

// FromWSAIdent maps the 4-byte ident of a Walksnail OSD header.
func FromWSAIdent(ident string) Variant {
	ident = strings.TrimRight(ident, "\x00 ")
	for _, v := range Variants {
		if w := v.info().wsa; w != "" && w == ident {
			return v
		}
	}
	return Unknown
}

var fold = cases.Fold()

// ParseVariant resolves an explicit font variant override. Both variant names
// ("INAV", "ardupilot") and font idents ("inav", "ardu", "bf") are accepted,
// case-insensitively.
func ParseVariant(s string) (Variant, error) {
	key := fold.String(strings.TrimSpace(s))
	for _, v := range Variants {
		info := v.info()
		if key == fold.String(info.name) || (info.ident != "" && key == fold.String(info.ident)) {
			return v, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", fpvosd.ErrUnknownFontIdent, s)
}
