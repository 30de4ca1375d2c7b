package region

import "github.com/voxelio/vxblock/voxel"

// BrickSource decodes one padded brick's voxel bytes. A nil return with a
// nil error means the brick is absent and must be treated as all-zero
// voxels, matching the container's "missing bricks in read_block return
// zero bytes" policy.
type BrickSource interface {
	ReadBrick(idx voxel.BlockIndex) ([]byte, error)
}

// BrickSink persists one padded brick's voxel bytes.
type BrickSink interface {
	WriteBrick(idx voxel.BlockIndex, data []byte) error
}

// Engine translates between voxel-space windows and the padded bricks of
// one encoded-blocked descriptor.
type Engine struct {
	Extent      voxel.Extent
	BlockLength uint32
	Padding     uint32
	VoxelSize   int
}

// New builds an Engine from an encoded-blocked descriptor.
func New(desc voxel.EncodedBlockedDesc) Engine {
	return Engine{
		Extent:      desc.Extent,
		BlockLength: desc.BlockLength,
		Padding:     desc.Padding,
		VoxelSize:   desc.VoxelInfo.VoxelSize(),
	}
}

// brickSide returns B = L + 2P.
func (e Engine) brickSide() int { return int(e.BlockLength) + 2*int(e.Padding) }

// brickOrigin returns the voxel-space coordinate of a brick's (0,0,0)
// scratch cell, which may be negative when Padding > 0.
func (e Engine) brickOrigin(idx voxel.BlockIndex) (ox, oy, oz int64) {
	l := int64(e.BlockLength)
	p := int64(e.Padding)
	return int64(idx.BX)*l - p, int64(idx.BY)*l - p, int64(idx.BZ)*l - p
}

// Sink receives one voxel's bytes at window-relative coordinates during
// ReadWindow.
type Sink func(x, y, z uint64, data []byte)

// Fill supplies one voxel's bytes at window-relative coordinates during
// WriteWindow; it writes into dst (a VoxelSize-length slice).
type Fill func(x, y, z uint64, dst []byte)

// ReadWindow decodes every brick covering w and invokes sink once per
// voxel inside w, with window-relative coordinates, visiting each voxel
// in w intersect [0,extent) exactly once.
func (e Engine) ReadWindow(w Window, src BrickSource, sink Sink) error {
	cw := w.Clamp(e.Extent)
	if cw.Empty() {
		return nil
	}
	beg, end := CoveringBricks(cw, e.BlockLength)
	side := e.brickSide()
	p, l := int(e.Padding), int(e.BlockLength)

	for bz := beg.BZ; bz < end.BZ; bz++ {
		for by := beg.BY; by < end.BY; by++ {
			for bx := beg.BX; bx < end.BX; bx++ {
				idx := voxel.BlockIndex{BX: bx, BY: by, BZ: bz}
				data, err := src.ReadBrick(idx)
				if err != nil {
					return err
				}
				e.visitIntersection(cw, idx, side, func(vx, vy, vz int64, lx, ly, lz int) {
					// Padding cells belong to a neighbouring brick's
					// interior; only this brick's interior is served.
					if lx < p || lx >= p+l || ly < p || ly >= p+l || lz < p || lz >= p+l {
						return
					}
					off := ((lz*side+ly)*side + lx) * e.VoxelSize
					wx := uint64(vx) - cw.SrcX
					wy := uint64(vy) - cw.SrcY
					wz := uint64(vz) - cw.SrcZ
					if data == nil {
						zero := make([]byte, e.VoxelSize)
						sink(wx, wy, wz, zero)
						return
					}
					sink(wx, wy, wz, data[off:off+e.VoxelSize])
				})
			}
		}
	}
	return nil
}

// WriteWindow fills each brick covering w via fill, then persists the
// brick through sink. Bricks are always materialized at full padded size
// even when only partially inside w; cells untouched by fill stay zero.
func (e Engine) WriteWindow(w Window, fill Fill, sink BrickSink) error {
	cw := w.Clamp(e.Extent)
	if cw.Empty() {
		return nil
	}
	beg, end := CoveringBricks(cw, e.BlockLength)
	side := e.brickSide()
	volume := side * side * side * e.VoxelSize

	for bz := beg.BZ; bz < end.BZ; bz++ {
		for by := beg.BY; by < end.BY; by++ {
			for bx := beg.BX; bx < end.BX; bx++ {
				idx := voxel.BlockIndex{BX: bx, BY: by, BZ: bz}
				scratch := make([]byte, volume)
				e.visitIntersection(cw, idx, side, func(vx, vy, vz int64, lx, ly, lz int) {
					off := ((lz*side+ly)*side + lx) * e.VoxelSize
					wx := uint64(vx) - cw.SrcX
					wy := uint64(vy) - cw.SrcY
					wz := uint64(vz) - cw.SrcZ
					fill(wx, wy, wz, scratch[off:off+e.VoxelSize])
				})
				if err := sink.WriteBrick(idx, scratch); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// visitIntersection calls visit once for every voxel in w that lies
// inside brick idx's padded range, with both the absolute voxel
// coordinate and the brick-local scratch coordinate.
func (e Engine) visitIntersection(w Window, idx voxel.BlockIndex, side int, visit func(vx, vy, vz int64, lx, ly, lz int)) {
	ox, oy, oz := e.brickOrigin(idx)

	lo := func(originAxis int64, winSrc uint64) int64 {
		v := originAxis
		if int64(winSrc) > v {
			v = int64(winSrc)
		}
		return v
	}
	hi := func(originAxis int64, winDst uint64, side int) int64 {
		v := originAxis + int64(side)
		if int64(winDst) < v {
			v = int64(winDst)
		}
		return v
	}

	x0, x1 := lo(ox, w.SrcX), hi(ox, w.DstX, side)
	y0, y1 := lo(oy, w.SrcY), hi(oy, w.DstY, side)
	z0, z1 := lo(oz, w.SrcZ), hi(oz, w.DstZ, side)

	for vz := z0; vz < z1; vz++ {
		for vy := y0; vy < y1; vy++ {
			for vx := x0; vx < x1; vx++ {
				visit(vx, vy, vz, int(vx-ox), int(vy-oy), int(vz-oz))
			}
		}
	}
}

// ReadWindowDense is the dense-buffer overload of ReadWindow: instead of
// a per-voxel callback, it copies every voxel in w directly into buf
// (row-major (z,y,x), VoxelSize bytes each), dispatching each copy
// through CopyVoxel.
func (e Engine) ReadWindowDense(w Window, src BrickSource, buf []byte) error {
	cw := w.Clamp(e.Extent)
	if cw.Empty() {
		return nil
	}
	width := cw.DstX - cw.SrcX
	height := cw.DstY - cw.SrcY
	return e.ReadWindow(w, src, func(x, y, z uint64, data []byte) {
		off := (z*height+y)*width + x
		off *= uint64(e.VoxelSize)
		CopyVoxel(buf[off:off+uint64(e.VoxelSize)], data, e.VoxelSize)
	})
}

// WriteWindowDense is the dense-buffer overload of WriteWindow: instead
// of a per-voxel callback, it copies every voxel in w directly out of
// buf (row-major (z,y,x), VoxelSize bytes each), dispatching each copy
// through CopyVoxel.
func (e Engine) WriteWindowDense(w Window, buf []byte, sink BrickSink) error {
	cw := w.Clamp(e.Extent)
	if cw.Empty() {
		return nil
	}
	width := cw.DstX - cw.SrcX
	height := cw.DstY - cw.SrcY
	return e.WriteWindow(w, func(x, y, z uint64, dst []byte) {
		off := (z*height+y)*width + x
		off *= uint64(e.VoxelSize)
		CopyVoxel(dst, buf[off:off+uint64(e.VoxelSize)], e.VoxelSize)
	}, sink)
}

// CopyVoxel copies one voxel's bytes from src to dst, dispatched on the
// voxel byte width the way the teacher dispatches per-format pixel
// copies in conversions.go — {1,2,4,8} get a direct fixed-width copy,
// anything else falls back to a plain copy().
func CopyVoxel(dst, src []byte, size int) {
	switch size {
	case 1:
		dst[0] = src[0]
	case 2:
		dst[0], dst[1] = src[0], src[1]
	case 4:
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], src[3]
	case 8:
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], src[3]
		dst[4], dst[5], dst[6], dst[7] = src[4], src[5], src[6], src[7]
	default:
		copy(dst, src)
	}
}
