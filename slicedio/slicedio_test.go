package slicedio

import (
	"path/filepath"
	"testing"

	"github.com/voxelio/vxblock/region"
	"github.com/voxelio/vxblock/voxel"
)

func testDesc(dir string) voxel.SlicedDesc {
	return voxel.SlicedDesc{
		VoxelInfo: voxel.Info{Type: voxel.TypeU8, Format: voxel.FormatR},
		Extent:    voxel.Extent{Width: 4, Height: 4, Depth: 12},
		Axis:      voxel.AxisZ,
		Dir:       dir,
		Prefix:    "slice_",
		Ext:       ".tif",
		SetW:      3,
	}
}

func TestWriteThenReadSliceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	desc := testDesc(dir)

	w, err := CreateWriter(desc)
	if err != nil {
		t.Fatalf("CreateWriter: %v", err)
	}
	full := region.Window{DstX: 4, DstY: 4, DstZ: 12}
	err = w.WriteWindow(full, func(x, y, z uint64, dst []byte) {
		dst[0] = byte((x + y*4 + z*16) % 256)
	})
	if err != nil {
		t.Fatalf("WriteWindow: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenReader(desc, 0)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	count := 0
	err = r.ReadWindow(full, func(x, y, z uint64, data []byte) {
		count++
		want := byte((x + y*4 + z*16) % 256)
		if data[0] != want {
			t.Fatalf("voxel (%d,%d,%d): want %d got %d", x, y, z, want, data[0])
		}
	})
	if err != nil {
		t.Fatalf("ReadWindow: %v", err)
	}
	if count != 4*4*12 {
		t.Fatalf("visited %d voxels, want %d", count, 4*4*12)
	}
}

func TestLRUCapacityLimitsReopens(t *testing.T) {
	dir := t.TempDir()
	desc := testDesc(dir)

	w, err := CreateWriter(desc)
	if err != nil {
		t.Fatalf("CreateWriter: %v", err)
	}
	for _, z := range []uint64{3, 7, 11} {
		win := region.Window{SrcZ: z, DstZ: z + 1, DstX: 4, DstY: 4}
		if err := w.WriteWindow(win, func(x, y, zz uint64, dst []byte) { dst[0] = byte(z) }); err != nil {
			t.Fatalf("WriteWindow z=%d: %v", z, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// sliceBytes = 4*4*1 = 16; budget 32 -> capacity 2.
	r, err := OpenReader(desc, 32)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}

	sequence := []uint64{3, 7, 3, 11}
	for _, z := range sequence {
		if _, err := r.ReadSlice(z); err != nil {
			t.Fatalf("ReadSlice(%d): %v", z, err)
		}
	}
	if r.OpenCount() != 3 {
		t.Fatalf("want 3 underlying opens (3,7,11), got %d", r.OpenCount())
	}
}

func TestFlushOnlyWritesWhenDirty(t *testing.T) {
	dir := t.TempDir()
	desc := testDesc(dir)
	w, err := CreateWriter(desc)
	if err != nil {
		t.Fatalf("CreateWriter: %v", err)
	}
	win := region.Window{DstX: 4, DstY: 4, SrcZ: 0, DstZ: 1}
	if err := w.WriteWindow(win, func(x, y, z uint64, dst []byte) { dst[0] = 9 }); err != nil {
		t.Fatalf("WriteWindow: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if w.FlushCount() != 1 {
		t.Fatalf("want 1 flush after dirty write, got %d", w.FlushCount())
	}
	// Flushing again with nothing new dirty should not rewrite.
	if err := w.Flush(); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if w.FlushCount() != 1 {
		t.Fatalf("want flush count to stay 1 when nothing dirty, got %d", w.FlushCount())
	}
}

func TestSliceNamePadding(t *testing.T) {
	desc := testDesc(filepath.Join(t.TempDir()))
	if got, want := desc.SliceName(3), "slice_003.tif"; got != want {
		t.Fatalf("SliceName(3) = %q, want %q", got, want)
	}
}
