// Package rawio implements the raw voxel-file I/O adapter (half of C5):
// a monolithic, unblocked dump of voxels in row-major (z,y,x) order,
// served by seek-and-copy against a plain *os.File. Grounded on the
// teacher's avformat.OpenOutput os.Create/io.WriteSeeker pattern
// (ffmpeggo/avformat/muxer.go) — no memory mapping, matching the Design
// Note that mapping is an optimisation, not a semantic requirement.
package rawio

import (
	"os"

	"github.com/voxelio/vxblock/region"
	"github.com/voxelio/vxblock/verr"
	"github.com/voxelio/vxblock/voxel"
)

// Reader serves clamped voxel windows out of a raw payload file.
type Reader struct {
	f    *os.File
	desc voxel.RawDesc
}

// OpenReader opens desc.DataPath for reading.
func OpenReader(desc voxel.RawDesc) (*Reader, error) {
	if err := voxel.CheckValidRaw(desc); err != nil {
		return nil, err
	}
	f, err := os.Open(desc.DataPath)
	if err != nil {
		return nil, &verr.FileOpenError{Path: desc.DataPath, Op: "open", Err: err}
	}
	return &Reader{f: f, desc: desc}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error { return r.f.Close() }

// ReadWindow reads w, clamped silently to [0,extent), one (z,y) scanline
// at a time: seek to (z*W*H + y*W + begX)*voxel_size, read
// (endX-begX)*voxel_size bytes, then invoke sink once per voxel with
// window-relative coordinates.
func (r *Reader) ReadWindow(w region.Window, sink region.Sink) error {
	cw := w.Clamp(r.desc.Extent)
	if cw.Empty() {
		return nil
	}
	voxelSize := uint64(r.desc.VoxelInfo.VoxelSize())
	width, height := r.desc.Extent.Width, r.desc.Extent.Height
	lineVoxels := cw.DstX - cw.SrcX
	line := make([]byte, lineVoxels*voxelSize)

	for z := cw.SrcZ; z < cw.DstZ; z++ {
		for y := cw.SrcY; y < cw.DstY; y++ {
			off := (z*width*height + y*width + cw.SrcX) * voxelSize
			if _, err := r.f.ReadAt(line, int64(off)); err != nil {
				return &verr.FileIOError{Op: "read raw scanline", Want: len(line), Err: err}
			}
			for x := cw.SrcX; x < cw.DstX; x++ {
				i := (x - cw.SrcX) * voxelSize
				sink(x-cw.SrcX, y-cw.SrcY, z-cw.SrcZ, line[i:i+voxelSize])
			}
		}
	}
	return nil
}

// Writer persists clamped voxel windows into a raw payload file.
type Writer struct {
	f    *os.File
	desc voxel.RawDesc
}

// CreateWriter creates desc.DataPath for writing, sized to hold the full
// descriptor extent.
func CreateWriter(desc voxel.RawDesc) (*Writer, error) {
	if err := voxel.CheckValidRaw(desc); err != nil {
		return nil, err
	}
	f, err := os.Create(desc.DataPath)
	if err != nil {
		return nil, &verr.FileOpenError{Path: desc.DataPath, Op: "create", Err: err}
	}
	total := int64(desc.Extent.NumVoxels()) * int64(desc.VoxelInfo.VoxelSize())
	if err := f.Truncate(total); err != nil {
		f.Close()
		return nil, &verr.FileIOError{Op: "truncate raw payload", Err: err}
	}
	return &Writer{f: f, desc: desc}, nil
}

// Close releases the underlying file handle.
func (w *Writer) Close() error { return w.f.Close() }

// WriteWindow fills a scanline buffer via fill for every (z,y) row in
// win (clamped to [0,extent)), then seeks and writes it in one call,
// symmetric with ReadWindow.
func (wr *Writer) WriteWindow(win region.Window, fill region.Fill) error {
	cw := win.Clamp(wr.desc.Extent)
	if cw.Empty() {
		return nil
	}
	voxelSize := uint64(wr.desc.VoxelInfo.VoxelSize())
	width, height := wr.desc.Extent.Width, wr.desc.Extent.Height
	lineVoxels := cw.DstX - cw.SrcX
	line := make([]byte, lineVoxels*voxelSize)

	for z := cw.SrcZ; z < cw.DstZ; z++ {
		for y := cw.SrcY; y < cw.DstY; y++ {
			for x := cw.SrcX; x < cw.DstX; x++ {
				i := (x - cw.SrcX) * voxelSize
				fill(x-cw.SrcX, y-cw.SrcY, z-cw.SrcZ, line[i:i+voxelSize])
			}
			off := (z*width*height + y*width + cw.SrcX) * voxelSize
			if _, err := wr.f.WriteAt(line, int64(off)); err != nil {
				return &verr.FileIOError{Op: "write raw scanline", Want: len(line), Err: err}
			}
		}
	}
	return nil
}
