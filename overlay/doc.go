// Package overlay composites OSD grid snapshots into transparent raster
// frames.
//
// A Renderer is built once per run from the catalog layout, the glyph set
// and the scaling decision, and is then used concurrently by every render
// worker. Cells under a hidden region, given explicitly or resolved from a
// named OSD item, are left fully transparent.
package overlay
