package voxel

import "fmt"

// SidecarDesc is the JSON shape of one representation's sidecar file,
// carried under the top-level "desc" key. It is a superset record: only
// the fields relevant to its Kind are populated, matching §6's "one per
// representation" sidecar contract.
type SidecarDesc struct {
	VolumeName  string     `json:"volume_name"`
	VoxelType   string     `json:"voxel_type"`
	VoxelFormat string     `json:"voxel_format"`
	Extent      [3]uint64  `json:"extend"`
	Space       [3]float64 `json:"space"`

	// encoded-blocked
	BlockLength uint32 `json:"block_length,omitempty"`
	Padding     uint32 `json:"padding,omitempty"`
	VolumeCodec string `json:"volume_codec,omitempty"`

	// sliced
	SliceFormat string `json:"slice_format,omitempty"`
	Axis        string `json:"axis,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
	Postfix     string `json:"postfix,omitempty"`
	SetW        int    `json:"setw,omitempty"`

	// raw and encoded-blocked
	DataPath string `json:"data_path,omitempty"`
}

// Sidecar is the on-disk envelope: {"desc": {...}}.
type Sidecar struct {
	Desc SidecarDesc `json:"desc"`
}

func typeJSONName(t Type) string {
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

func parseTypeJSONName(s string) (Type, error) {
	switch s {
	case "u8":
		return TypeU8, nil
	case "u16":
		return TypeU16, nil
	case "f32":
		return TypeF32, nil
	default:
		return TypeUnknown, fmt.Errorf("voxel: unknown voxel_type %q", s)
	}
}

func formatJSONName(f Format) string {
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

func parseFormatJSONName(s string) (Format, error) {
	switch s {
	case "R":
		return FormatR, nil
	case "RG":
		return FormatRG, nil
	case "RGB":
		return FormatRGB, nil
	case "RGBA":
		return FormatRGBA, nil
	default:
		return FormatNone, fmt.Errorf("voxel: unknown voxel_format %q", s)
	}
}

func axisJSONName(a Axis) string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "z"
	}
}

func parseAxisJSONName(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	default:
		return AxisZ, fmt.Errorf("voxel: unknown axis %q", s)
	}
}

func infoFromSidecar(d SidecarDesc) (Info, error) {
	t, err := parseTypeJSONName(d.VoxelType)
	if err != nil {
		return Info{}, err
	}
	f, err := parseFormatJSONName(d.VoxelFormat)
	if err != nil {
		return Info{}, err
	}
	return Info{Type: t, Format: f}, nil
}

func extentFromSidecar(d SidecarDesc) Extent {
	return Extent{Width: d.Extent[0], Height: d.Extent[1], Depth: d.Extent[2]}
}

func spacingFromSidecar(d SidecarDesc) Spacing {
	return Spacing{X: d.Space[0], Y: d.Space[1], Z: d.Space[2]}
}

// ToEncodedBlockedDesc converts a sidecar record into an
// EncodedBlockedDesc, validating it in the process.
func (d SidecarDesc) ToEncodedBlockedDesc() (EncodedBlockedDesc, error) {
	info, err := infoFromSidecar(d)
	if err != nil {
		return EncodedBlockedDesc{}, err
	}
	desc := EncodedBlockedDesc{
		VoxelInfo:   info,
		Extent:      extentFromSidecar(d),
		Spacing:     spacingFromSidecar(d),
		BlockLength: d.BlockLength,
		Padding:     d.Padding,
		VolumeCodec: d.VolumeCodec,
		DataPath:    d.DataPath,
	}
	return desc, CheckValid(desc)
}

// FromEncodedBlockedDesc builds the sidecar record for desc.
func FromEncodedBlockedDesc(name string, desc EncodedBlockedDesc) SidecarDesc {
	return SidecarDesc{
		VolumeName:  name,
		VoxelType:   typeJSONName(desc.VoxelInfo.Type),
		VoxelFormat: formatJSONName(desc.VoxelInfo.Format),
		Extent:      [3]uint64{desc.Extent.Width, desc.Extent.Height, desc.Extent.Depth},
		Space:       [3]float64{desc.Spacing.X, desc.Spacing.Y, desc.Spacing.Z},
		BlockLength: desc.BlockLength,
		Padding:     desc.Padding,
		VolumeCodec: desc.VolumeCodec,
		DataPath:    desc.DataPath,
	}
}

// ToRawDesc converts a sidecar record into a RawDesc, validating it.
func (d SidecarDesc) ToRawDesc() (RawDesc, error) {
	info, err := infoFromSidecar(d)
	if err != nil {
		return RawDesc{}, err
	}
	desc := RawDesc{
		VoxelInfo: info,
		Extent:    extentFromSidecar(d),
		Spacing:   spacingFromSidecar(d),
		DataPath:  d.DataPath,
	}
	return desc, CheckValidRaw(desc)
}

// FromRawDesc builds the sidecar record for desc.
func FromRawDesc(name string, desc RawDesc) SidecarDesc {
	return SidecarDesc{
		VolumeName:  name,
		VoxelType:   typeJSONName(desc.VoxelInfo.Type),
		VoxelFormat: formatJSONName(desc.VoxelInfo.Format),
		Extent:      [3]uint64{desc.Extent.Width, desc.Extent.Height, desc.Extent.Depth},
		Space:       [3]float64{desc.Spacing.X, desc.Spacing.Y, desc.Spacing.Z},
		DataPath:    desc.DataPath,
	}
}

// ToSlicedDesc converts a sidecar record into a SlicedDesc, validating it.
func (d SidecarDesc) ToSlicedDesc() (SlicedDesc, error) {
	info, err := infoFromSidecar(d)
	if err != nil {
		return SlicedDesc{}, err
	}
	axis, err := parseAxisJSONName(d.Axis)
	if err != nil {
		return SlicedDesc{}, err
	}
	desc := SlicedDesc{
		VoxelInfo: info,
		Extent:    extentFromSidecar(d),
		Spacing:   spacingFromSidecar(d),
		Axis:      axis,
		Dir:       d.DataPath,
		Prefix:    d.Prefix,
		Postfix:   d.Postfix,
		SetW:      d.SetW,
		Ext:       d.SliceFormat,
	}
	return desc, CheckValidSliced(desc)
}

// FromSlicedDesc builds the sidecar record for desc.
func FromSlicedDesc(name string, desc SlicedDesc) SidecarDesc {
	return SidecarDesc{
		VolumeName:  name,
		VoxelType:   typeJSONName(desc.VoxelInfo.Type),
		VoxelFormat: formatJSONName(desc.VoxelInfo.Format),
		Extent:      [3]uint64{desc.Extent.Width, desc.Extent.Height, desc.Extent.Depth},
		Space:       [3]float64{desc.Spacing.X, desc.Spacing.Y, desc.Spacing.Z},
		SliceFormat: desc.Ext,
		Axis:        axisJSONName(desc.Axis),
		Prefix:      desc.Prefix,
		Postfix:     desc.Postfix,
		SetW:        desc.SetW,
		DataPath:    desc.Dir,
	}
}
