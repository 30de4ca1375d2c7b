package region

import (
	"testing"

	"github.com/voxelio/vxblock/voxel"
)

func testEngine() Engine {
	return New(voxel.EncodedBlockedDesc{
		VoxelInfo:   voxel.Info{Type: voxel.TypeU8, Format: voxel.FormatR},
		Extent:      voxel.Extent{Width: 10, Height: 10, Depth: 10},
		BlockLength: 4,
		Padding:     1,
		DataPath:    "x",
		VolumeCodec: "cabac-dct",
	})
}

func TestCoveringBricksIncludesPartialBrick(t *testing.T) {
	w := Window{SrcX: 0, DstX: 10, SrcY: 0, DstY: 10, SrcZ: 0, DstZ: 10}
	beg, end := CoveringBricks(w, 4)
	if beg != (voxel.BlockIndex{}) {
		t.Fatalf("beg: want zero index, got %v", beg)
	}
	// width 10 at L=4 needs bricks 0,1,2 (brick 2 covers [8,12), partial)
	if end.BX != 3 || end.BY != 3 || end.BZ != 3 {
		t.Fatalf("end: want (3,3,3), got %v", end)
	}
}

// fakeSource/fakeSink let the engine tests drive ReadWindow/WriteWindow
// without a real codec or container.
type fakeSource struct {
	bricks map[voxel.BlockIndex][]byte
}

func (s *fakeSource) ReadBrick(idx voxel.BlockIndex) ([]byte, error) {
	return s.bricks[idx], nil
}

type fakeSink struct {
	bricks map[voxel.BlockIndex][]byte
}

func (s *fakeSink) WriteBrick(idx voxel.BlockIndex, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	if s.bricks == nil {
		s.bricks = make(map[voxel.BlockIndex][]byte)
	}
	s.bricks[idx] = cp
	return nil
}

func TestWriteThenReadWindowRoundTrip(t *testing.T) {
	e := testEngine()
	w := Window{SrcX: 2, DstX: 8, SrcY: 2, DstY: 8, SrcZ: 2, DstZ: 8}

	sink := &fakeSink{}
	err := e.WriteWindow(w, func(x, y, z uint64, dst []byte) {
		// window-relative coordinate sum, truncated to a byte, as a
		// deterministic per-voxel value.
		dst[0] = byte((x + y*6 + z*36) % 251)
	}, sink)
	if err != nil {
		t.Fatalf("WriteWindow: %v", err)
	}

	src := &fakeSource{bricks: sink.bricks}
	visited := make(map[[3]uint64]byte)
	err = e.ReadWindow(w, src, func(x, y, z uint64, data []byte) {
		visited[[3]uint64{x, y, z}] = data[0]
	})
	if err != nil {
		t.Fatalf("ReadWindow: %v", err)
	}

	wantCount := 6 * 6 * 6
	if len(visited) != wantCount {
		t.Fatalf("visited %d voxels, want %d", len(visited), wantCount)
	}
	for key, got := range visited {
		x, y, z := key[0], key[1], key[2]
		want := byte((x + y*6 + z*36) % 251)
		if got != want {
			t.Fatalf("voxel %v: want %d got %d", key, want, got)
		}
	}
}

func TestReadWindowMissingBrickIsZero(t *testing.T) {
	e := testEngine()
	w := Window{SrcX: 0, DstX: 4, SrcY: 0, DstY: 4, SrcZ: 0, DstZ: 4}
	src := &fakeSource{bricks: map[voxel.BlockIndex][]byte{}}

	nonZero := 0
	err := e.ReadWindow(w, src, func(x, y, z uint64, data []byte) {
		if data[0] != 0 {
			nonZero++
		}
	})
	if err != nil {
		t.Fatalf("ReadWindow: %v", err)
	}
	if nonZero != 0 {
		t.Fatalf("missing brick should read back all zero, found %d nonzero voxels", nonZero)
	}
}

func TestReadWindowClampsOutOfExtent(t *testing.T) {
	e := testEngine()
	// window extends past the 10-voxel extent on every axis.
	w := Window{SrcX: 7, DstX: 20, SrcY: 7, DstY: 20, SrcZ: 7, DstZ: 20}
	src := &fakeSource{bricks: map[voxel.BlockIndex][]byte{}}

	count := 0
	err := e.ReadWindow(w, src, func(x, y, z uint64, data []byte) {
		count++
		if x >= 3 || y >= 3 || z >= 3 {
			t.Fatalf("voxel %d,%d,%d outside clamped window-relative bounds", x, y, z)
		}
	})
	if err != nil {
		t.Fatalf("ReadWindow: %v", err)
	}
	if count != 27 {
		t.Fatalf("want 27 voxels visited (clamped to extent), got %d", count)
	}
}

func TestWindowClampEmptyOutsideExtent(t *testing.T) {
	w := Window{SrcX: 100, DstX: 120, SrcY: 0, DstY: 4, SrcZ: 0, DstZ: 4}
	cw := w.Clamp(voxel.Extent{Width: 10, Height: 10, Depth: 10})
	if !cw.Empty() {
		t.Fatalf("expected empty window, got %+v", cw)
	}
}

func TestCopyVoxelDispatch(t *testing.T) {
	for _, size := range []int{1, 2, 4, 8, 3} {
		src := make([]byte, size)
		for i := range src {
			src[i] = byte(i + 1)
		}
		dst := make([]byte, size)
		CopyVoxel(dst, src, size)
		for i := range src {
			if dst[i] != src[i] {
				t.Fatalf("size %d: byte %d: want %d got %d", size, i, src[i], dst[i])
			}
		}
	}
}
