// Package process implements the Processor pipeline (C6): a single
// streaming pass from one bound source to N registered targets, each
// with its own optional op stack (down-sampling, mapping, statistics).
// The open/stream/close shape and per-call error propagation are
// grounded on ffmpeggo.VideoEncoder's NewVideoEncoder -> EncodeFrame* ->
// Close lifecycle (ffmpeggo/encoder.go), generalized from one fixed sink
// to an N-target dispatch table.
package process

import "github.com/voxelio/vxblock/region"

// Source reads a voxel-space window and reports one voxel at a time via
// sink, with window-relative coordinates — the common shape already
// implemented by rawio.Reader, slicedio.Reader, and the encoded-blocked
// adapter in this package.
type Source interface {
	ReadWindow(w region.Window, sink region.Sink) error
}

// TargetSink writes a voxel-space window, pulling one voxel at a time
// from fill — the common shape already implemented by rawio.Writer,
// slicedio.Writer, and the encoded-blocked adapter in this package.
type TargetSink interface {
	WriteWindow(w region.Window, fill region.Fill) error
}

// sampleFromBytes decodes one little-endian voxel sample.
func sampleFromBytes(b []byte, voxelSize int) int32 {
	switch voxelSize {
	case 1:
		return int32(b[0])
	case 2:
		return int32(b[0]) | int32(b[1])<<8
	default:
		var v int32
		for i := 0; i < voxelSize && i < 4; i++ {
			v |= int32(b[i]) << (8 * i)
		}
		return v
	}
}

// putSample encodes one little-endian voxel sample, clipped to
// [0, 2^(8*voxelSize)-1].
func putSample(dst []byte, v int32, voxelSize int) {
	if v < 0 {
		v = 0
	}
	// From 4 bytes up every non-negative int32 is already in range.
	if voxelSize < 4 {
		max := int32(1)<<(8*uint(voxelSize)) - 1
		if v > max {
			v = max
		}
	}
	for i := 0; i < voxelSize; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}
