package slicedio

import (
	"os"

	"github.com/voxelio/vxblock/region"
	"github.com/voxelio/vxblock/verr"
	"github.com/voxelio/vxblock/voxel"
)

// Reader serves voxel windows out of a directory of per-z TIFF slices.
// With MaxCacheBytes left at zero it keeps a single-slot cache (the last
// slice read); a positive budget switches to an LRU sized by
// MaxCacheBytes / bytes-per-slice.
type Reader struct {
	desc         voxel.SlicedDesc
	width        uint64
	height       uint64
	voxelSize    int
	cache        *sliceLRU
	decodedCount int // incremented on every cache-miss TIFF decode, for tests
}

// OpenReader prepares a Reader over desc. MaxCacheBytes <= 0 selects the
// single-slot cache; a positive value sizes an LRU to that byte budget.
func OpenReader(desc voxel.SlicedDesc, maxCacheBytes int64) (*Reader, error) {
	if err := voxel.CheckValidSliced(desc); err != nil {
		return nil, err
	}
	width, height := desc.Extent.Width, desc.Extent.Height
	voxelSize := desc.VoxelInfo.VoxelSize()
	sliceBytes := int64(width) * int64(height) * int64(voxelSize)

	capacity := 1
	if maxCacheBytes > 0 && sliceBytes > 0 {
		capacity = int(maxCacheBytes / sliceBytes)
		if capacity < 1 {
			capacity = 1
		}
	}
	return &Reader{
		desc:      desc,
		width:     width,
		height:    height,
		voxelSize: voxelSize,
		cache:     newSliceLRU(capacity),
	}, nil
}

// OpenCount returns how many times ReadSlice actually decoded a TIFF
// file rather than serving from cache.
func (r *Reader) OpenCount() int { return r.decodedCount }

// ReadSlice returns the decoded plane for z, serving from cache when
// present.
func (r *Reader) ReadSlice(z uint64) ([]byte, error) {
	if plane, ok := r.cache.get(z); ok {
		return plane, nil
	}
	path := r.desc.Dir + string(os.PathSeparator) + r.desc.SliceName(z)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &verr.FileOpenError{Path: path, Op: "read", Err: err}
	}
	plane, err := decodePlane(data, r.desc.VoxelInfo, r.width, r.height)
	if err != nil {
		return nil, err
	}
	r.decodedCount++
	r.cache.put(z, plane)
	return plane, nil
}

// ReadWindow reads w (clamped to [0,extent)) one z-plane at a time via
// ReadSlice, invoking sink once per voxel with window-relative
// coordinates.
func (r *Reader) ReadWindow(w region.Window, sink region.Sink) error {
	cw := w.Clamp(r.desc.Extent)
	if cw.Empty() {
		return nil
	}
	for z := cw.SrcZ; z < cw.DstZ; z++ {
		plane, err := r.ReadSlice(z)
		if err != nil {
			return err
		}
		for y := cw.SrcY; y < cw.DstY; y++ {
			rowOff := y * r.width * uint64(r.voxelSize)
			for x := cw.SrcX; x < cw.DstX; x++ {
				off := rowOff + x*uint64(r.voxelSize)
				sink(x-cw.SrcX, y-cw.SrcY, z-cw.SrcZ, plane[off:off+uint64(r.voxelSize)])
			}
		}
	}
	return nil
}
