package slicedio

import (
	"os"

	"github.com/voxelio/vxblock/region"
	"github.com/voxelio/vxblock/verr"
	"github.com/voxelio/vxblock/voxel"
)

// Writer accumulates voxel writes into an in-memory slice buffer with a
// per-row dirty bitmap and flushes to TIFF on slice switch or Close.
// Random-access writes within a slice are staged only: the underlying
// TIFF writer has no in-place scanline overwrite, so Flush always emits
// the whole resident slice — the dirty bitmap only decides whether Flush
// writes at all, not which rows it writes.
type Writer struct {
	desc      voxel.SlicedDesc
	width     uint64
	height    uint64
	voxelSize int

	haveCurrent bool
	currentZ    uint64
	buf         []byte
	dirty       []bool
	flushCount  int
}

// CreateWriter prepares a Writer over desc.
func CreateWriter(desc voxel.SlicedDesc) (*Writer, error) {
	if err := voxel.CheckValidSliced(desc); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(desc.Dir, 0o755); err != nil {
		return nil, &verr.FileOpenError{Path: desc.Dir, Op: "mkdir", Err: err}
	}
	return &Writer{
		desc:      desc,
		width:     desc.Extent.Width,
		height:    desc.Extent.Height,
		voxelSize: desc.VoxelInfo.VoxelSize(),
	}, nil
}

// FlushCount returns how many times Flush actually wrote a TIFF file.
func (w *Writer) FlushCount() int { return w.flushCount }

func (w *Writer) loadSlice(z uint64) {
	w.currentZ = z
	w.haveCurrent = true
	w.buf = make([]byte, w.width*w.height*uint64(w.voxelSize))
	w.dirty = make([]bool, w.height)
}

// Flush writes the resident slice, if any row is dirty, then clears the
// dirty bitmap.
func (w *Writer) Flush() error {
	if !w.haveCurrent {
		return nil
	}
	anyDirty := false
	for _, d := range w.dirty {
		if d {
			anyDirty = true
			break
		}
	}
	if !anyDirty {
		return nil
	}
	data, err := encodePlane(w.buf, w.desc.VoxelInfo, w.width, w.height)
	if err != nil {
		return err
	}
	path := w.desc.Dir + string(os.PathSeparator) + w.desc.SliceName(w.currentZ)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &verr.FileOpenError{Path: path, Op: "write", Err: err}
	}
	w.flushCount++
	for i := range w.dirty {
		w.dirty[i] = false
	}
	return nil
}

// WriteWindow fills w (clamped to [0,extent)) via fill, switching
// resident slices (flushing the previous one first) as z advances.
func (wr *Writer) WriteWindow(w region.Window, fill region.Fill) error {
	cw := w.Clamp(wr.desc.Extent)
	if cw.Empty() {
		return nil
	}
	for z := cw.SrcZ; z < cw.DstZ; z++ {
		if !wr.haveCurrent || wr.currentZ != z {
			if err := wr.Flush(); err != nil {
				return err
			}
			wr.loadSlice(z)
		}
		for y := cw.SrcY; y < cw.DstY; y++ {
			rowOff := y * wr.width * uint64(wr.voxelSize)
			for x := cw.SrcX; x < cw.DstX; x++ {
				off := rowOff + x*uint64(wr.voxelSize)
				fill(x-cw.SrcX, y-cw.SrcY, z-cw.SrcZ, wr.buf[off:off+uint64(wr.voxelSize)])
			}
			wr.dirty[y] = true
		}
	}
	return nil
}

// Close flushes any resident slice and releases the writer.
func (w *Writer) Close() error {
	return w.Flush()
}
