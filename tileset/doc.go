// Package tileset loads OSD font glyphs from a font directory.
//
// A font directory holds, per font variant and tile kind, either raw
// "font_<ident>[_hd][_2].bin" pages of 256 RGBA tiles or the same names with
// a PNG, BMP or WebP vertical strip. A Set is read-only once loaded and is
// shared by every render worker.
package tileset
