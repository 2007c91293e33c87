package fpvosd

import "errors"

// Error taxonomy shared by all sub-packages. Sub-packages wrap these with
// context (offsets, frame indices, paths), so test with errors.Is.
var (
	// ErrCorruptFormat is returned for a bad signature, a truncated header or
	// record, or a record whose tile count exceeds the remaining bytes.
	ErrCorruptFormat = errors.New("fpvosd: corrupt OSD file")

	// ErrOutOfBoundsUpdate is returned when a record places a tile outside the
	// grid declared by the file header.
	ErrOutOfBoundsUpdate = errors.New("fpvosd: tile update outside OSD grid")

	// ErrNonMonotonicFrameIndex is returned when a record's frame index does
	// not strictly exceed the previous record's index.
	ErrNonMonotonicFrameIndex = errors.New("fpvosd: frame index not strictly ascending")

	// ErrUnknownFontIdent is returned when a font variant override matches no
	// registered variant.
	ErrUnknownFontIdent = errors.New("fpvosd: unknown font variant")

	// ErrUnknownOsdItem is returned when an item name is not defined for the
	// active font variant.
	ErrUnknownOsdItem = errors.New("fpvosd: unknown OSD item")

	// ErrAssetMissing is returned when no glyph bitmap is available for a
	// required variant, tile kind or tile index.
	ErrAssetMissing = errors.New("fpvosd: font asset missing")

	// ErrRenderIO is returned when a rendered frame cannot be persisted.
	ErrRenderIO = errors.New("fpvosd: frame output failed")

	// ErrCancelled reports a run stopped by the caller before completion.
	ErrCancelled = errors.New("fpvosd: cancelled")
)
