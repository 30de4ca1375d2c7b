// Package region implements the brick-padded region engine (C4): the
// translation between an axis-aligned voxel window and the set of padded
// bricks covering it, and the splat/gather of voxels between a caller
// buffer and a brick's scratch buffer. There is no direct teacher analog
// for the windowing arithmetic itself; the brick-grid iteration shape
// (flat nested bz/by/bx loops, no recursion) is grounded on the CTB
// tiling loops in the teacher's ffmpeggo/avcodec/hevc_encoder.go.
package region

import "github.com/voxelio/vxblock/voxel"

// Window is a half-open axis-aligned voxel-space range:
// [SrcX,DstX) x [SrcY,DstY) x [SrcZ,DstZ).
type Window struct {
	SrcX, DstX uint64
	SrcY, DstY uint64
	SrcZ, DstZ uint64
}

// Clamp intersects w with [0,extent) on every axis. Src bounds clamp up,
// Dst bounds clamp down; a window entirely outside extent collapses to
// an empty range (Src == Dst on some axis).
func (w Window) Clamp(e voxel.Extent) Window {
	clampAxis := func(src, dst, limit uint64) (uint64, uint64) {
		if src > limit {
			src = limit
		}
		if dst > limit {
			dst = limit
		}
		if dst < src {
			dst = src
		}
		return src, dst
	}
	out := w
	out.SrcX, out.DstX = clampAxis(w.SrcX, w.DstX, e.Width)
	out.SrcY, out.DstY = clampAxis(w.SrcY, w.DstY, e.Height)
	out.SrcZ, out.DstZ = clampAxis(w.SrcZ, w.DstZ, e.Depth)
	return out
}

// WindowFull returns the window covering the whole of extent e.
func WindowFull(e voxel.Extent) Window {
	return Window{DstX: e.Width, DstY: e.Height, DstZ: e.Depth}
}

// Empty reports whether w covers zero voxels on any axis.
func (w Window) Empty() bool {
	return w.SrcX >= w.DstX || w.SrcY >= w.DstY || w.SrcZ >= w.DstZ
}

func ceilDivU64(n uint64, d uint32) uint64 {
	return (n + uint64(d) - 1) / uint64(d)
}

// CoveringBricks returns the half-open brick-index range [Beg,End) that
// covers w at block length l: Beg is the floor-divided brick containing
// w's start, End is the ceil-divided brick just past w's end, so a
// window that ends mid-brick still includes that final partial brick
// (the inclusive-of-partial-bricks policy).
func CoveringBricks(w Window, l uint32) (beg, end voxel.BlockIndex) {
	beg = voxel.BlockIndex{
		BX: uint32(w.SrcX / uint64(l)),
		BY: uint32(w.SrcY / uint64(l)),
		BZ: uint32(w.SrcZ / uint64(l)),
	}
	end = voxel.BlockIndex{
		BX: uint32(ceilDivU64(w.DstX, l)),
		BY: uint32(ceilDivU64(w.DstY, l)),
		BZ: uint32(ceilDivU64(w.DstZ, l)),
	}
	return beg, end
}
