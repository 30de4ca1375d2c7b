package voxel

import "testing"

func TestVoxelSizeAndSupportedByCore(t *testing.T) {
	cases := []struct {
		info       Info
		size       int
		core       bool
	}{
		{Info{TypeU8, FormatR}, 1, true},
		{Info{TypeU16, FormatR}, 2, true},
		{Info{TypeU8, FormatRGBA}, 4, false},
		{Info{TypeF32, FormatR}, 4, false},
		{Info{TypeUnknown, FormatR}, 0, false},
	}
	for _, c := range cases {
		if got := c.info.VoxelSize(); got != c.size {
			t.Errorf("%v.VoxelSize() = %d, want %d", c.info, got, c.size)
		}
		if got := c.info.SupportedByCore(); got != c.core {
			t.Errorf("%v.SupportedByCore() = %v, want %v", c.info, got, c.core)
		}
	}
}

func TestExtentValid(t *testing.T) {
	if !(Extent{1, 1, 1}).Valid() {
		t.Fatal("unit extent should be valid")
	}
	if (Extent{0, 1, 1}).Valid() {
		t.Fatal("zero width should be invalid")
	}
	huge := Extent{1 << 32, 1 << 32, 2}
	if huge.Valid() {
		t.Fatal("overflowing extent should be invalid")
	}
}

func TestGridCeilDivision(t *testing.T) {
	g := Grid(Extent{Width: 10, Height: 9, Depth: 8}, 4)
	if g.Nx != 3 || g.Ny != 3 || g.Nz != 2 {
		t.Fatalf("Grid = %+v, want {3,3,2}", g)
	}
}

func TestBlockIndexLess(t *testing.T) {
	a := BlockIndex{BX: 1, BY: 0, BZ: 0}
	b := BlockIndex{BX: 0, BY: 0, BZ: 1}
	if !a.Less(b) {
		t.Fatal("a should sort before b: lower BZ wins first")
	}
	if b.Less(a) {
		t.Fatal("b should not sort before a")
	}
}
