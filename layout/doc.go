// Package layout is the static catalog of OSD font variants, grid kinds,
// tile kinds and the named OSD items each variant knows how to locate.
//
// Everything in this package is read-only after init and safe to share
// across render workers.
package layout
