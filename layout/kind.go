package layout

import "fmt"

// TileKind is one of the two native pixel resolutions tiles are supplied in.
type TileKind uint8

const (
	// TileSD is the 24x36 pixel tile.
	TileSD TileKind = iota
	// TileHD is the 36x54 pixel tile.
	TileHD
)

// TileKinds lists the tile kinds.
var TileKinds = []TileKind{TileSD, TileHD}

// Size returns the native pixel size of one tile.
func (k TileKind) Size() (width, height int) {
	switch k {
	case TileHD:
		return 36, 54
	default:
		return 24, 36
	}
}

// String returns "SD" or "HD".
func (k TileKind) String() string {
	switch k {
	case TileSD:
		return "SD"
	case TileHD:
		return "HD"
	default:
		return fmt.Sprintf("TileKind(%d)", uint8(k))
	}
}

// TileKindForSize returns the tile kind with the given native pixel size.
func TileKindForSize(width, height int) (TileKind, bool) {
	for _, k := range TileKinds {
		w, h := k.Size()
		if w == width && h == height {
			return k, true
		}
	}
	return TileSD, false
}

// Grid is the character grid size in tiles.
type Grid struct {
	Width  int
	Height int
}

// Cells returns the number of cells in the grid.
func (g Grid) Cells() int {
	return g.Width * g.Height
}

// Contains reports whether (row, col) lies inside the grid.
func (g Grid) Contains(row, col int) bool {
	return row >= 0 && row < g.Height && col >= 0 && col < g.Width
}

// Pixels returns the grid footprint for the given tile size.
func (g Grid) Pixels(tileWidth, tileHeight int) (width, height int) {
	return g.Width * tileWidth, g.Height * tileHeight
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// GridKind identifies the well-known OSD grid layouts.
type GridKind uint8

const (
	// GridCustom is any grid size not listed below.
	GridCustom GridKind = iota
	// GridSD is the 30x15 analog-style grid.
	GridSD
	// GridFakeHD is the 60x22 grid used by DJI FakeHD and the DJI record buffer.
	GridFakeHD
	// GridHD is the 50x18 DJI HD grid.
	GridHD
	// GridWSA is the 53x20 Walksnail grid.
	GridWSA
)

var gridKindInfo = [...]struct {
	name   string
	grid   Grid
	native TileKind
}{
	GridCustom: {"custom", Grid{}, TileSD},
	GridSD:     {"SD", Grid{30, 15}, TileSD},
	GridFakeHD: {"FakeHD", Grid{60, 22}, TileHD},
	GridHD:     {"HD", Grid{50, 18}, TileHD},
	GridWSA:    {"WSA", Grid{53, 20}, TileSD},
}

// Grid returns the kind's grid size; zero for GridCustom.
func (k GridKind) Grid() Grid {
	return gridKindInfo[k].grid
}

// NativeTile returns the tile kind recordings of this grid are meant for.
func (k GridKind) NativeTile() TileKind {
	return gridKindInfo[k].native
}

func (k GridKind) String() string {
	if int(k) >= len(gridKindInfo) {
		return fmt.Sprintf("GridKind(%d)", uint8(k))
	}
	return gridKindInfo[k].name
}

// DetectGrid returns the well-known grid kind matching g, or GridCustom.
func DetectGrid(g Grid) GridKind {
	for k := GridSD; int(k) < len(gridKindInfo); k++ {
		if gridKindInfo[k].grid == g {
			return k
		}
	}
	return GridCustom
}
