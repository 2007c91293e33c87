// Package osdfile decodes OSD recordings made by FPV goggles into a
// time-ordered sequence of tile grid snapshots.
//
// Two containers are understood: the DJI "MSPOSD" recording and the
// Walksnail Avatar recording. Both store a full tile grid per record; the
// decoder keeps only the cells that changed so that replaying the records
// from a blank grid reproduces every snapshot.
package osdfile
