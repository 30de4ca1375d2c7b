package voxel

import (
	"errors"
	"fmt"
)

// DescriptorError reports an invalid or inconsistent descriptor: a small
// struct carrying a reason, with an Error() method.
type DescriptorError struct {
	Reason string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("invalid descriptor: %s", e.Reason)
}

func invalid(reason string) error {
	return &DescriptorError{Reason: reason}
}

// Axis names the slice axis of a SlicedDesc.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// EncodedBlockedDesc describes an encoded-blocked container: voxel layout,
// extent, spacing, brick geometry, and the payload file path.
type EncodedBlockedDesc struct {
	VoxelInfo Info
	Extent    Extent
	Spacing   Spacing

	BlockLength uint32 // L; must be positive and even
	Padding     uint32 // P; may be zero

	VolumeCodec string // codec registration name, e.g. "cabac-dct"
	DataPath    string
}

// PaddedBrickSize returns B = L + 2P.
func (d EncodedBlockedDesc) PaddedBrickSize() uint32 {
	return d.BlockLength + 2*d.Padding
}

// Grid returns the covering brick grid for this descriptor.
func (d EncodedBlockedDesc) Grid() BlockGrid {
	return Grid(d.Extent, d.BlockLength)
}

// CheckValid validates an EncodedBlockedDesc per the format's invariants:
// positive extent, even non-zero block length, a supported voxel layout,
// and a non-empty data path.
func CheckValid(d EncodedBlockedDesc) error {
	if !d.Extent.Valid() {
		return invalid("extent must have all axes positive and fit in 64 bits")
	}
	if !d.Spacing.Valid() {
		return invalid("spacing must be non-negative")
	}
	if d.BlockLength == 0 || d.BlockLength%2 != 0 {
		return invalid("block_length must be positive and even")
	}
	if !d.VoxelInfo.Valid() || !d.VoxelInfo.SupportedByCore() {
		return invalid("voxel_info must be {u8,R} or {u16,R}")
	}
	if d.DataPath == "" {
		return invalid("data_path must not be empty")
	}
	return nil
}

// RawDesc describes a monolithic raw voxel dump.
type RawDesc struct {
	VoxelInfo Info
	Extent    Extent
	Spacing   Spacing
	DataPath  string
}

// CheckValidRaw validates a RawDesc.
func CheckValidRaw(d RawDesc) error {
	if !d.Extent.Valid() {
		return invalid("extent must have all axes positive and fit in 64 bits")
	}
	if !d.Spacing.Valid() {
		return invalid("spacing must be non-negative")
	}
	if !d.VoxelInfo.Valid() {
		return invalid("voxel_info must be a concrete type/format pair")
	}
	if d.DataPath == "" {
		return invalid("data_path must not be empty")
	}
	return nil
}

// SlicedDesc describes an indexed directory of 2-D image slices.
type SlicedDesc struct {
	VoxelInfo Info
	Extent    Extent
	Spacing   Spacing

	Axis     Axis
	Dir      string
	Prefix   string
	Postfix  string
	SetW     int // zero-pad width
	Ext      string
}

// CheckValidSliced validates a SlicedDesc.
func CheckValidSliced(d SlicedDesc) error {
	if !d.Extent.Valid() {
		return invalid("extent must have all axes positive and fit in 64 bits")
	}
	if !d.Spacing.Valid() {
		return invalid("spacing must be non-negative")
	}
	if !d.VoxelInfo.Valid() {
		return invalid("voxel_info must be a concrete type/format pair")
	}
	if d.Dir == "" {
		return invalid("dir must not be empty")
	}
	if d.SetW < 0 {
		return invalid("setw must not be negative")
	}
	return nil
}

// SliceName returns the file name for slice index i: prefix + pad(i,w) +
// postfix + ext.
func (d SlicedDesc) SliceName(i uint64) string {
	return fmt.Sprintf("%s%0*d%s%s", d.Prefix, d.SetW, i, d.Postfix, d.Ext)
}

// NumSlices returns the slice count along d.Axis.
func (d SlicedDesc) NumSlices() uint64 {
	switch d.Axis {
	case AxisX:
		return d.Extent.Width
	case AxisY:
		return d.Extent.Height
	default:
		return d.Extent.Depth
	}
}

// IsDescriptorError reports whether err is (or wraps) a DescriptorError.
func IsDescriptorError(err error) bool {
	var de *DescriptorError
	return errors.As(err, &de)
}
