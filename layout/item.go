package layout

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/fpvosd"
)

// Cell is a grid cell coordinate.
type Cell struct {
	Row int
	Col int
}

// Item locates a named OSD element (e.g. "gpslat") in a grid.
//
// An item is found either at fixed Cells, or relative to any cell showing one
// of its Markers: the rectangle of Width x Height cells whose top-left corner
// is the marker cell moved by (OffsetCol, OffsetRow).
type Item struct {
	Name      string
	Cells     []Cell
	Markers   []uint16
	OffsetCol int
	OffsetRow int
	Width     int
	Height    int
}

// Regions returns the grid regions covered by the item. tileAt reports the
// tile shown at a cell and is consulted for marker lookups only.
func (it Item) Regions(g Grid, tileAt func(row, col int) uint16) []Region {
	var regions []Region
	for _, c := range it.Cells {
		if g.Contains(c.Row, c.Col) {
			regions = append(regions, Region{Col: c.Col, Row: c.Row, Width: 1, Height: 1})
		}
	}
	if len(it.Markers) == 0 || tileAt == nil {
		return regions
	}
	w, h := max(it.Width, 1), max(it.Height, 1)
	for col := range g.Width {
		for row := range g.Height {
			if !slices.Contains(it.Markers, tileAt(row, col)) {
				continue
			}
			r := Region{Col: col + it.OffsetCol, Row: row + it.OffsetRow, Width: w, Height: h}
			if clipped, ok := r.Clip(g); ok {
				regions = append(regions, clipped)
			}
		}
	}
	return regions
}

func marker(name string, markers []uint16, offsetCol, width int) Item {
	return Item{Name: name, Markers: markers, OffsetCol: offsetCol, Width: width, Height: 1}
}

var inavItems = []Item{
	marker("gpslat", []uint16{0x03}, 0, 10),
	marker("gpslon", []uint16{0x04}, 0, 10),
	marker("alt", []uint16{0x76, 0x77, 0x78, 0x79}, -4, 5),
}

var ardupilotItems = []Item{
	marker("gpslat", []uint16{0xA6}, 0, 10),
	marker("gpslon", []uint16{0xA7}, 0, 11),
	marker("alt", []uint16{0xB1, 0xB3}, -4, 5),
	marker("short+code", []uint16{0x2B}, -4, 8),
	marker("long+code", []uint16{0x2B}, -8, 12),
}

// UnknownItemError reports an item name the active variant does not define.
type UnknownItemError struct {
	Variant Variant
	Item    string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown OSD item for %s font variant: %s", e.Variant, e.Item)
}

// Is makes errors.Is(err, fpvosd.ErrUnknownOsdItem) match.
func (e *UnknownItemError) Is(target error) bool {
	return target == fpvosd.ErrUnknownOsdItem
}

// Layout is a font variant bound to a concrete grid.
type Layout struct {
	Variant Variant
	Grid    Grid
	Native  TileKind
	Items   []Item
}

// Lookup returns the catalog entry for v on the DJI FakeHD grid.
func Lookup(v Variant) Layout {
	return For(v, GridFakeHD.Grid(), GridFakeHD.NativeTile())
}

// For returns the catalog entry for v bound to grid g with native tile kind.
func For(v Variant, g Grid, native TileKind) Layout {
	return Layout{
		Variant: v,
		Grid:    g,
		Native:  native,
		Items:   slices.Clone(v.info().items),
	}
}

// Item returns the named item or an *UnknownItemError.
func (l Layout) Item(name string) (Item, error) {
	for _, it := range l.Items {
		if it.Name == name {
			return it, nil
		}
	}
	return Item{}, &UnknownItemError{Variant: l.Variant, Item: name}
}

// ValidateItems checks every name resolves, returning all failures joined.
func (l Layout) ValidateItems(names []string) error {
	var errs []error
	for _, n := range names {
		if _, err := l.Item(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ItemNames returns the item names of the layout in table order.
func (l Layout) ItemNames() []string {
	names := make([]string, len(l.Items))
	for i, it := range l.Items {
		names[i] = it.Name
	}
	return names
}

// ItemNames returns the item names known for every variant.
func ItemNames() map[Variant][]string {
	m := make(map[Variant][]string, len(Variants))
	for _, v := range Variants {
		m[v] = Lookup(v).ItemNames()
	}
	return m
}
