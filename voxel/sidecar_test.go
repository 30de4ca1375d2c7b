package voxel

import "testing"

func TestSidecarEncodedBlockedRoundTrip(t *testing.T) {
	desc := validDesc()
	sc := FromEncodedBlockedDesc("tumor", desc)
	if sc.VoxelType != "u8" || sc.VoxelFormat != "R" {
		t.Fatalf("unexpected sidecar fields: %+v", sc)
	}
	got, err := sc.ToEncodedBlockedDesc()
	if err != nil {
		t.Fatalf("ToEncodedBlockedDesc: %v", err)
	}
	if got != desc {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, desc)
	}
}

func TestSidecarRawRoundTrip(t *testing.T) {
	desc := RawDesc{
		VoxelInfo: Info{TypeU16, FormatR},
		Extent:    Extent{4, 4, 4},
		Spacing:   Spacing{1, 1, 2},
		DataPath:  "vol.raw",
	}
	sc := FromRawDesc("ct", desc)
	got, err := sc.ToRawDesc()
	if err != nil {
		t.Fatalf("ToRawDesc: %v", err)
	}
	if got != desc {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, desc)
	}
}

func TestSidecarSlicedRoundTrip(t *testing.T) {
	desc := SlicedDesc{
		VoxelInfo: Info{TypeU8, FormatR},
		Extent:    Extent{16, 16, 32},
		Spacing:   Spacing{1, 1, 1},
		Axis:      AxisZ,
		Dir:       "slices",
		Prefix:    "s_",
		Ext:       ".tif",
		SetW:      4,
	}
	sc := FromSlicedDesc("mri", desc)
	if sc.Axis != "z" {
		t.Fatalf("Axis = %q, want \"z\"", sc.Axis)
	}
	got, err := sc.ToSlicedDesc()
	if err != nil {
		t.Fatalf("ToSlicedDesc: %v", err)
	}
	if got != desc {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, desc)
	}
}

func TestSidecarRejectsUnknownVoxelType(t *testing.T) {
	sc := SidecarDesc{VoxelType: "f64", VoxelFormat: "R", Extent: [3]uint64{1, 1, 1}}
	if _, err := sc.ToRawDesc(); err == nil {
		t.Fatal("want error for unknown voxel_type")
	}
}
