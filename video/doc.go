// Package video connects fpvosd to ffmpeg: it probes the resolution of a
// flight video with ffprobe and encodes overlay frames into a transparent
// video by piping raw RGBA frames into an ffmpeg process.
//
// Both binaries are looked up on PATH unless a path is given explicitly.
package video
