package container

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/voxelio/vxblock/verr"
	"github.com/voxelio/vxblock/voxel"
)

func testDesc(t *testing.T, path string) voxel.EncodedBlockedDesc {
	t.Helper()
	return voxel.EncodedBlockedDesc{
		VoxelInfo:   voxel.Info{Type: voxel.TypeU8, Format: voxel.FormatR},
		Extent:      voxel.Extent{Width: 16, Height: 16, Depth: 16},
		Spacing:     voxel.Spacing{X: 1, Y: 1, Z: 1},
		BlockLength: 8,
		Padding:     1,
		VolumeCodec: "cabac-dct",
		DataPath:    path,
	}
}

func TestWriterReaderDirectoryCoverage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volume.ebk")
	desc := testDesc(t, path)

	w, err := Create(path, desc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	indices := []voxel.BlockIndex{{BX: 0, BY: 0, BZ: 0}, {BX: 1, BY: 0, BZ: 0}, {BX: 0, BY: 1, BZ: 0}}
	for _, idx := range indices {
		packets := [][]byte{[]byte("one"), []byte("two-two")}
		if err := w.WriteBlock(idx, packets); err != nil {
			t.Fatalf("WriteBlock(%v): %v", idx, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.BlockCount() != len(indices) {
		t.Fatalf("directory coverage: want %d entries got %d", len(indices), r.BlockCount())
	}
	for _, idx := range indices {
		if !r.HasBlock(idx) {
			t.Fatalf("missing block %v after reopen", idx)
		}
		packets, err := r.ReadBlock(idx)
		if err != nil {
			t.Fatalf("ReadBlock(%v): %v", idx, err)
		}
		if len(packets) != 2 || string(packets[0]) != "one" || string(packets[1]) != "two-two" {
			t.Fatalf("ReadBlock(%v) = %v, want [one two-two]", idx, packets)
		}
	}
	if err := r.CheckValidation(); err != nil {
		t.Fatalf("CheckValidation: %v", err)
	}
}

func TestWriterRejectsDuplicateBlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volume.ebk")
	w, err := Create(path, testDesc(t, path))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	idx := voxel.BlockIndex{BX: 0, BY: 0, BZ: 0}
	if err := w.WriteBlock(idx, [][]byte{[]byte("x")}); err != nil {
		t.Fatalf("first WriteBlock: %v", err)
	}
	err = w.WriteBlock(idx, [][]byte{[]byte("y")})
	if err == nil {
		t.Fatal("expected duplicate write error")
	}
	var dupErr *verr.DuplicateWrite
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected *verr.DuplicateWrite, got %T: %v", err, err)
	}
	w.Close()
}

func TestReaderRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ebk")

	buf := make([]byte, HeaderSize)
	// magic field (first 8 bytes) set to an unrelated pattern.
	for i := 0; i < 8; i++ {
		buf[i] = 0xef
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Open(path)
	if err == nil {
		t.Fatal("expected FileFormatError for bad magic")
	}
}

func TestPacketFramingAccounting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volume.ebk")
	w, err := Create(path, testDesc(t, path))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	idx := voxel.BlockIndex{BX: 0, BY: 0, BZ: 0}
	packets := [][]byte{[]byte("abc"), []byte("de"), {}}
	if err := w.WriteBlock(idx, packets); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	wantSize := uint64(0)
	for _, p := range packets {
		wantSize += uint64(8 + len(p))
	}
	gotSize := w.entries[idx].Size
	if gotSize != wantSize {
		t.Fatalf("size accounting: want %d got %d", wantSize, gotSize)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	wantFileSize := wantSize + uint64(BlockInfoSize) + HeaderSize
	if uint64(info.Size()) != wantFileSize {
		t.Fatalf("file size: want %d got %d", wantFileSize, info.Size())
	}
}

func TestReadBlockMissingIndexReturnsNil(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volume.ebk")
	w, err := Create(path, testDesc(t, path))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.WriteBlock(voxel.BlockIndex{BX: 0, BY: 0, BZ: 0}, [][]byte{[]byte("x")}); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	packets, err := r.ReadBlock(voxel.BlockIndex{BX: 9, BY: 9, BZ: 9})
	if err != nil {
		t.Fatalf("ReadBlock(missing): %v", err)
	}
	if packets != nil {
		t.Fatalf("want nil packets for missing index, got %v", packets)
	}
}
