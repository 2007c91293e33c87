package overlay

import "github.com/gogpu/fpvosd/layout"

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := overlay.NewRenderer(lay, tiles, dec,
//		overlay.WithHiddenItems("gpslat", "gpslon"),
//		overlay.WithHiddenRegions(layout.Region{Col: 0, Row: 0, Width: 10, Height: 1}))
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	regions []layout.Region
	items   []string
}

// WithHiddenRegions blanks the given grid regions in every frame. Regions
// are clipped to the grid.
func WithHiddenRegions(regions ...layout.Region) Option {
	return func(o *options) {
		o.regions = append(o.regions, regions...)
	}
}

// WithHiddenItems blanks the named OSD items in every frame. Names are
// resolved against the renderer's layout; an unknown name makes NewRenderer
// fail with fpvosd.ErrUnknownOsdItem.
func WithHiddenItems(names ...string) Option {
	return func(o *options) {
		o.items = append(o.items, names...)
	}
}
