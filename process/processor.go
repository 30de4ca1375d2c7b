package process

import (
	"github.com/voxelio/vxblock/region"
	"github.com/voxelio/vxblock/verr"
	"github.com/voxelio/vxblock/voxel"
)

// denseSource is implemented by sources (e.g. EncodedBlockedSource) that
// can fill a row-major dense buffer directly, letting Processor skip the
// per-voxel sink callback.
type denseSource interface {
	ReadDense(w region.Window, buf []byte) error
}

// denseTarget is implemented by targets (e.g. EncodedBlockedTarget) that
// can consume a row-major dense buffer directly, letting Processor skip
// the per-voxel fill callback.
type denseTarget interface {
	WriteDense(w region.Window, buf []byte) error
}

// defaultSlabDepth bounds how many z-slices of the source are densely
// buffered at once — the z-slab schedule C4 defines, generalized here to
// any Source rather than only an encoded-blocked one. Kept even so a
// down-sampling target's z-pairs never straddle a slab boundary.
const defaultSlabDepth = 16

// Target is one registered conversion destination: where converted
// voxels go, and the optional op stack applied on the way.
type Target struct {
	Sink      TargetSink
	VoxelSize int
	Ops       OpStack
}

// Processor binds one Source to N Targets and performs a single
// streaming pass over a voxel range, applying each target's op stack
// independently against the same source stripe.
type Processor struct {
	src          Source
	extent       voxel.Extent
	srcVoxelSize int
	rng          region.Window
	targets      []Target
	slabDepth    uint64
}

// NewProcessor constructs an empty Processor; call SetSource before
// AddTarget/Convert.
func NewProcessor() *Processor {
	return &Processor{slabDepth: defaultSlabDepth}
}

// SetSource binds src over extent, restricting conversion to rng. A nil
// rng converts the full extent.
func (p *Processor) SetSource(src Source, extent voxel.Extent, voxelSize int, rng *region.Window) {
	p.src = src
	p.extent = extent
	p.srcVoxelSize = voxelSize
	if rng != nil {
		p.rng = *rng
	} else {
		p.rng = region.Window{DstX: extent.Width, DstY: extent.Height, DstZ: extent.Depth}
	}
}

// AddTarget registers a conversion destination with its own op stack.
func (p *Processor) AddTarget(sink TargetSink, voxelSize int, ops OpStack) {
	p.targets = append(p.targets, Target{Sink: sink, VoxelSize: voxelSize, Ops: ops})
}

// Convert performs a single streaming pass: the bound range is read in
// z-slabs, and every registered target's op stack runs against the same
// slab before that target issues its own WriteWindow call.
func (p *Processor) Convert() error {
	rng := p.rng.Clamp(p.extent)
	if rng.Empty() {
		return nil
	}

	for _, t := range p.targets {
		if t.Ops.DownSample != nil {
			width := rng.DstX - rng.SrcX
			height := rng.DstY - rng.SrcY
			depth := rng.DstZ - rng.SrcZ
			if width%2 != 0 || height%2 != 0 || depth%2 != 0 {
				return &verr.PreconditionError{Reason: "down-sampling requires an even-sized range on every axis"}
			}
		}
	}

	width := rng.DstX - rng.SrcX
	height := rng.DstY - rng.SrcY

	for z0 := rng.SrcZ; z0 < rng.DstZ; {
		z1 := z0 + p.slabDepth
		if z1 > rng.DstZ {
			z1 = rng.DstZ
		}
		slab := region.Window{SrcX: rng.SrcX, DstX: rng.DstX, SrcY: rng.SrcY, DstY: rng.DstY, SrcZ: z0, DstZ: z1}
		depth := z1 - z0

		buf := make([]byte, width*height*depth*uint64(p.srcVoxelSize))
		var err error
		if ds, ok := p.src.(denseSource); ok {
			err = ds.ReadDense(slab, buf)
		} else {
			err = p.src.ReadWindow(slab, func(x, y, z uint64, data []byte) {
				off := ((z*height+y)*width + x) * uint64(p.srcVoxelSize)
				region.CopyVoxel(buf[off:off+uint64(p.srcVoxelSize)], data, p.srcVoxelSize)
			})
		}
		if err != nil {
			return err
		}

		for i := range p.targets {
			if err := p.streamTargetSlab(&p.targets[i], rng, slab, buf, width, height, depth); err != nil {
				return err
			}
		}

		z0 = z1
	}
	return nil
}

func (p *Processor) streamTargetSlab(t *Target, fullRng, slab region.Window, buf []byte, width, height, depth uint64) error {
	scale := uint64(1)
	if t.Ops.DownSample != nil {
		scale = 2
	}

	outW, outH, outD := width/scale, height/scale, depth/scale
	out := make([]byte, outW*outH*outD*uint64(t.VoxelSize))

	get := func(x, y, z uint64) int32 {
		off := ((z*height+y)*width + x) * uint64(p.srcVoxelSize)
		return sampleFromBytes(buf[off:off+uint64(p.srcVoxelSize)], p.srcVoxelSize)
	}

	for oz := uint64(0); oz < outD; oz++ {
		for oy := uint64(0); oy < outH; oy++ {
			for ox := uint64(0); ox < outW; ox++ {
				var v int32
				if t.Ops.DownSample != nil {
					x0, y0, z0 := ox*2, oy*2, oz*2
					var block [8]int32
					block[0] = get(x0, y0, z0)
					block[1] = get(x0+1, y0, z0)
					block[2] = get(x0, y0+1, z0)
					block[3] = get(x0+1, y0+1, z0)
					block[4] = get(x0, y0, z0+1)
					block[5] = get(x0+1, y0, z0+1)
					block[6] = get(x0, y0+1, z0+1)
					block[7] = get(x0+1, y0+1, z0+1)
					v = t.Ops.DownSample.Apply(block)
				} else {
					v = get(ox, oy, oz)
				}
				if t.Ops.Mapping != nil {
					v = t.Ops.Mapping.Fn(v)
				}
				if t.Ops.Stats != nil {
					t.Ops.Stats.Observe(v)
				}
				off := ((oz*outH+oy)*outW + ox) * uint64(t.VoxelSize)
				putSample(out[off:off+uint64(t.VoxelSize)], v, t.VoxelSize)
			}
		}
	}

	outSrcX := (slab.SrcX - fullRng.SrcX) / scale
	outSrcY := (slab.SrcY - fullRng.SrcY) / scale
	outSrcZ := (slab.SrcZ - fullRng.SrcZ) / scale
	outWin := region.Window{
		SrcX: outSrcX, DstX: outSrcX + outW,
		SrcY: outSrcY, DstY: outSrcY + outH,
		SrcZ: outSrcZ, DstZ: outSrcZ + outD,
	}
	if dt, ok := t.Sink.(denseTarget); ok {
		return dt.WriteDense(outWin, out)
	}
	return t.Sink.WriteWindow(outWin, func(x, y, z uint64, dst []byte) {
		off := ((z*outH+y)*outW + x) * uint64(t.VoxelSize)
		region.CopyVoxel(dst, out[off:off+uint64(t.VoxelSize)], t.VoxelSize)
	})
}
