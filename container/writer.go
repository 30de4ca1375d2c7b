package container

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/voxelio/vxblock/verr"
	"github.com/voxelio/vxblock/voxel"
)

type writerState int

const (
	stateAppending writerState = iota
	stateClosed
)

// Writer appends bricks to a new encoded-blocked file and finalizes the
// directory and header on Close, following the open->append->close
// lifecycle of the distilled format.
type Writer struct {
	f       *os.File
	desc    voxel.EncodedBlockedDesc
	state   writerState
	offset  uint64
	entries map[voxel.BlockIndex]BlockInfo
	order   []voxel.BlockIndex
}

// Create opens path for writing and returns a Writer positioned at the
// start of the payload region. desc must already satisfy
// voxel.CheckValid.
func Create(path string, desc voxel.EncodedBlockedDesc) (*Writer, error) {
	if err := voxel.CheckValid(desc); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, &verr.FileOpenError{Path: path, Op: "create", Err: err}
	}
	return &Writer{
		f:       f,
		desc:    desc,
		entries: make(map[voxel.BlockIndex]BlockInfo),
	}, nil
}

// WriteBlock appends one brick's framed packets at the writer's current
// tail position. Writing the same BlockIndex twice is rejected with
// verr.DuplicateWrite.
func (w *Writer) WriteBlock(idx voxel.BlockIndex, packets [][]byte) error {
	if w.state != stateAppending {
		return &verr.PreconditionError{Reason: "WriteBlock called after Close"}
	}
	if _, exists := w.entries[idx]; exists {
		return &verr.DuplicateWrite{Index: idx}
	}

	startOffset := w.offset
	var size uint64
	for _, pkt := range packets {
		var lenBuf [8]byte
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(pkt)))
		if n, err := w.f.Write(lenBuf[:]); err != nil || n != 8 {
			return &verr.FileIOError{Op: "write packet length", Want: 8, Got: n, Err: err}
		}
		if n, err := w.f.Write(pkt); err != nil || n != len(pkt) {
			return &verr.FileIOError{Op: "write packet body", Want: len(pkt), Got: n, Err: err}
		}
		size += uint64(8 + len(pkt))
	}
	w.offset += size

	w.entries[idx] = BlockInfo{
		Index:       idx,
		Offset:      startOffset,
		Size:        size,
		PacketCount: uint64(len(packets)),
	}
	w.order = append(w.order, idx)
	return nil
}

// Close writes the directory and tail header, then closes the underlying
// file. The directory is emitted in the order bricks were written; the
// format does not require any particular order.
func (w *Writer) Close() error {
	if w.state != stateAppending {
		return nil
	}
	w.state = stateClosed

	directoryOffset := w.offset
	for _, idx := range w.order {
		bi := w.entries[idx]
		if n, err := w.f.Write(bi.marshal()); err != nil || n != BlockInfoSize {
			w.f.Close()
			return &verr.FileIOError{Op: "write directory entry", Want: BlockInfoSize, Got: n, Err: err}
		}
	}
	directoryBytes := uint32(len(w.order)) * BlockInfoSize

	hdr := Header{
		Magic:           Magic,
		Version:         Version,
		BlockLength:     w.desc.BlockLength,
		Padding:         w.desc.Padding,
		DirectoryOffset: directoryOffset,
		DirectoryCount:  uint32(len(w.order)),
		DirectoryBytes:  directoryBytes,
	}
	if n, err := w.f.Write(hdr.marshal()); err != nil || n != HeaderSize {
		w.f.Close()
		return &verr.FileIOError{Op: "write header", Want: HeaderSize, Got: n, Err: err}
	}

	if err := w.f.Close(); err != nil {
		return &verr.FileIOError{Op: fmt.Sprintf("close %s", w.desc.DataPath), Err: err}
	}
	return nil
}
