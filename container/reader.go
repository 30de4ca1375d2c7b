package container

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/voxelio/vxblock/verr"
	"github.com/voxelio/vxblock/voxel"
)

// Reader serves bricks out of an existing encoded-blocked file: Open
// loads the tail header and directory once, ReadBlock then seeks and
// reads payload bytes per call.
type Reader struct {
	f         *os.File
	header    Header
	byIndex   map[voxel.BlockIndex]BlockInfo
	closed    bool
}

// Open validates the tail header and loads the directory into memory.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &verr.FileOpenError{Path: path, Op: "open", Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &verr.FileOpenError{Path: path, Op: "stat", Err: err}
	}
	if info.Size() < HeaderSize {
		f.Close()
		return nil, &verr.FileFormatError{Reason: "file shorter than header size"}
	}

	hdrBuf := make([]byte, HeaderSize)
	if _, err := f.ReadAt(hdrBuf, info.Size()-HeaderSize); err != nil {
		f.Close()
		return nil, &verr.FileIOError{Op: "read header", Want: HeaderSize, Err: err}
	}
	hdr, err := unmarshalHeader(hdrBuf)
	if err != nil {
		f.Close()
		return nil, err
	}

	// Per the resolved Open Question on directory sizing: size the
	// in-memory slice by directory_count records and read exactly
	// directory_count*64 bytes, never by a separately-carried byte count.
	dirBuf := make([]byte, int(hdr.DirectoryCount)*BlockInfoSize)
	if len(dirBuf) > 0 {
		if _, err := f.ReadAt(dirBuf, int64(hdr.DirectoryOffset)); err != nil {
			f.Close()
			return nil, &verr.FileIOError{Op: "read directory", Want: len(dirBuf), Err: err}
		}
	}

	byIndex := make(map[voxel.BlockIndex]BlockInfo, hdr.DirectoryCount)
	for i := 0; i < int(hdr.DirectoryCount); i++ {
		rec := unmarshalBlockInfo(dirBuf[i*BlockInfoSize : (i+1)*BlockInfoSize])
		if rec.IsSentinel() {
			continue
		}
		byIndex[rec.Index] = rec
	}

	return &Reader{f: f, header: hdr, byIndex: byIndex}, nil
}

// Header returns the validated tail header.
func (r *Reader) Header() Header { return r.header }

// BlockCount returns the number of live (non-sentinel) directory entries.
func (r *Reader) BlockCount() int { return len(r.byIndex) }

// HasBlock reports whether idx has a directory entry.
func (r *Reader) HasBlock(idx voxel.BlockIndex) bool {
	_, ok := r.byIndex[idx]
	return ok
}

// ReadBlock returns the framed packets for idx. A missing index is not an
// error: it returns a nil slice, matching the format's "zero bytes for a
// missing index" read semantics.
func (r *Reader) ReadBlock(idx voxel.BlockIndex) ([][]byte, error) {
	bi, ok := r.byIndex[idx]
	if !ok {
		return nil, nil
	}

	buf := make([]byte, bi.Size)
	if bi.Size > 0 {
		if _, err := r.f.ReadAt(buf, int64(bi.Offset)); err != nil {
			return nil, &verr.FileIOError{Op: fmt.Sprintf("read block %s", idx), Want: int(bi.Size), Err: err}
		}
	}

	packets := make([][]byte, 0, bi.PacketCount)
	var pos uint64
	for i := uint64(0); i < bi.PacketCount; i++ {
		if pos+8 > uint64(len(buf)) {
			return nil, &verr.FileFormatError{Reason: fmt.Sprintf("block %s: truncated packet length at offset %d", idx, pos)}
		}
		plen := binary.LittleEndian.Uint64(buf[pos : pos+8])
		pos += 8
		if pos+plen > uint64(len(buf)) {
			return nil, &verr.FileFormatError{Reason: fmt.Sprintf("block %s: truncated packet body at offset %d", idx, pos)}
		}
		packets = append(packets, buf[pos:pos+plen])
		pos += plen
	}
	if pos != uint64(len(buf)) {
		return nil, &verr.FileFormatError{Reason: fmt.Sprintf("block %s: %d trailing bytes after framed packets", idx, uint64(len(buf))-pos)}
	}
	return packets, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.f.Close()
}

// CheckValidation re-validates a Reader's loaded header: magic and
// version already checked in Open, this additionally confirms the
// directory accounting invariant (size 2 in the spec's Testable
// Properties): every live entry's span ends at or before
// directory_offset.
func (r *Reader) CheckValidation() error {
	for idx, bi := range r.byIndex {
		if bi.Offset+bi.Size > r.header.DirectoryOffset {
			return &verr.FileFormatError{Reason: fmt.Sprintf("block %s span [%d,%d) overruns directory_offset %d", idx, bi.Offset, bi.Offset+bi.Size, r.header.DirectoryOffset)}
		}
	}
	return nil
}
