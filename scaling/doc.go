// Package scaling chooses the tile kind and tile pixel size used to render an
// OSD grid for a target video resolution.
//
// Plan is a pure function: the same Input always yields the same Decision.
package scaling
