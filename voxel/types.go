// Package voxel defines the scalar-volume voxel and descriptor model shared
// by every representation (raw, sliced, encoded-blocked): voxel type and
// format, extent, spacing, block addressing, and per-representation
// descriptors with their validation predicates.
package voxel

import "fmt"

// Type identifies the scalar storage type of one voxel sample.
type Type int

const (
	TypeUnknown Type = iota
	TypeU8
	TypeU16
	// TypeF32 is carried by descriptors (raw/sliced representations) but
	// rejected by SupportedByCore: the brick codec and container only
	// handle the two integer layouts.
	TypeF32
)

func (t Type) String() string {
	switch t {
	case TypeU8:
		return "u8"
	case TypeU16:
		return "u16"
	case TypeF32:
		return "f32"
	default:
		return "unknown"
	}
}

// BitsPerSample returns the number of bits occupied by one sample of t.
func (t Type) BitsPerSample() int {
	switch t {
	case TypeU8:
		return 8
	case TypeU16:
		return 16
	case TypeF32:
		return 32
	default:
		return 0
	}
}

// Bytes returns the number of bytes occupied by one sample of t.
func (t Type) Bytes() int {
	return t.BitsPerSample() / 8
}

// Format identifies the channel layout of one voxel.
type Format int

const (
	FormatNone Format = iota
	FormatR
	FormatRG
	FormatRGB
	FormatRGBA
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatRG:
		return "RG"
	case FormatRGB:
		return "RGB"
	case FormatRGBA:
		return "RGBA"
	default:
		return "NONE"
	}
}

// SamplesPerPixel returns the channel count of f.
func (f Format) SamplesPerPixel() int {
	switch f {
	case FormatR:
		return 1
	case FormatRG:
		return 2
	case FormatRGB:
		return 3
	case FormatRGBA:
		return 4
	default:
		return 0
	}
}

// Info describes the per-voxel storage layout: scalar type plus channel
// format. The core pipeline (codec, container, region engine) only
// supports {U8,R} and {U16,R}; other combinations may be carried in
// descriptors but are rejected by CheckValid for the encoded-blocked path.
type Info struct {
	Type   Type
	Format Format
}

// VoxelSize returns the number of bytes occupied by one voxel of info.
func (info Info) VoxelSize() int {
	return info.Type.Bytes() * info.Format.SamplesPerPixel()
}

// Valid reports whether info names a concrete, persistable voxel layout.
func (info Info) Valid() bool {
	return info.Type != TypeUnknown && info.Format != FormatNone
}

// SupportedByCore reports whether info is one of the two layouts the
// encoded-blocked brick engine and Processor pipeline accept.
func (info Info) SupportedByCore() bool {
	if info.Format != FormatR {
		return false
	}
	return info.Type == TypeU8 || info.Type == TypeU16
}

// Extent is the voxel-space size of a volume, always strictly positive on
// every axis.
type Extent struct {
	Width, Height, Depth uint64
}

// Valid reports whether e is usable: all axes positive and the aggregate
// voxel count fits in 64 bits without overflow.
func (e Extent) Valid() bool {
	if e.Width == 0 || e.Height == 0 || e.Depth == 0 {
		return false
	}
	total := e.Width * e.Height
	if e.Width != 0 && total/e.Width != e.Height {
		return false
	}
	total2 := total * e.Depth
	if total != 0 && total2/total != e.Depth {
		return false
	}
	return true
}

// NumVoxels returns Width*Height*Depth; callers must check Valid first.
func (e Extent) NumVoxels() uint64 {
	return e.Width * e.Height * e.Depth
}

// Spacing is the physical size of one voxel along each axis; units are
// opaque to the engine.
type Spacing struct {
	X, Y, Z float64
}

// Valid reports whether every component is non-negative.
func (s Spacing) Valid() bool {
	return s.X >= 0 && s.Y >= 0 && s.Z >= 0
}

// BlockIndex addresses one brick in the encoded-blocked grid.
type BlockIndex struct {
	BX, BY, BZ uint32
}

// Less gives BlockIndex a total order (z-major, then y, then x).
func (b BlockIndex) Less(o BlockIndex) bool {
	if b.BZ != o.BZ {
		return b.BZ < o.BZ
	}
	if b.BY != o.BY {
		return b.BY < o.BY
	}
	return b.BX < o.BX
}

func (b BlockIndex) String() string {
	return fmt.Sprintf("(%d,%d,%d)", b.BX, b.BY, b.BZ)
}

// BlockGrid describes the brick grid derived from an extent and a block
// length: Nx,Ny,Nz bricks per axis, ceil-divided.
type BlockGrid struct {
	Nx, Ny, Nz uint32
}

// Grid computes the covering brick-grid dimensions for extent e at block
// length l.
func Grid(e Extent, l uint32) BlockGrid {
	ceilDiv := func(n uint64, d uint32) uint32 {
		return uint32((n + uint64(d) - 1) / uint64(d))
	}
	return BlockGrid{
		Nx: ceilDiv(e.Width, l),
		Ny: ceilDiv(e.Height, l),
		Nz: ceilDiv(e.Depth, l),
	}
}
