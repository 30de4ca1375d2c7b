// Package container implements the encoded-blocked on-disk format (C3): a
// tail-resident 128-byte Header, a 64-byte-per-entry BlockInfo directory,
// and length-framed packet payloads, adapted from the teacher's box/atom
// muxer idiom (ffmpeggo/avformat/mp4.go's stsz/stco sample tables,
// vulkango/video_h265.go's MP4WriterHEVC) generalized from an array of
// sample offsets to an array of brick coordinates.
package container

import (
	"encoding/binary"
	"fmt"

	"github.com/voxelio/vxblock/verr"
)

// Magic identifies an encoded-blocked container file.
const Magic uint64 = 0x7ffffebf

// HeaderSize is the fixed byte length of the tail header.
const HeaderSize = 128

// BlockInfoSize is the fixed byte length of one directory record.
//
// The distilled format names a 64-byte record holding a 3xu32 BlockIndex
// plus three u64 fields (offset, size, packet_count) and a reserved tail;
// 12+24=36 bytes of named fields leaves 28 bytes of reserved space to
// reach 64, not the 24 the prose names — BlockInfoSize is the invariant
// that load-bears elsewhere (directory_bytes, file-size accounting), so
// the reserved tail is sized to make the record exactly 64 bytes (see
// DESIGN.md).
const BlockInfoSize = 64

const reservedHeaderBytes = HeaderSize - (8 + 8 + 4 + 4 + 8 + 4 + 4)
const reservedBlockInfoBytes = BlockInfoSize - (4 + 4 + 4 + 8 + 8 + 8)

// SentinelIndex marks an unused directory slot.
const SentinelIndex uint32 = 0x7f7f7f7f

// Version is the packed (major<<32 | minor<<16 | patch) format version
// this package writes. On read, a file is accepted when its major
// version equals Version's major version.
var Version = PackVersion(1, 0, 0)

// PackVersion packs a major.minor.patch triple into the header's version
// field.
func PackVersion(major, minor, patch uint32) uint64 {
	return uint64(major)<<32 | uint64(minor)<<16 | uint64(patch)
}

// Header is the fixed-size tail record of an encoded-blocked file.
type Header struct {
	Magic            uint64
	Version          uint64
	BlockLength      uint32
	Padding          uint32
	DirectoryOffset  uint64
	DirectoryCount   uint32
	DirectoryBytes   uint32
}

func (h Header) marshal() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.Magic)
	binary.LittleEndian.PutUint64(buf[8:16], h.Version)
	binary.LittleEndian.PutUint32(buf[16:20], h.BlockLength)
	binary.LittleEndian.PutUint32(buf[20:24], h.Padding)
	binary.LittleEndian.PutUint64(buf[24:32], h.DirectoryOffset)
	binary.LittleEndian.PutUint32(buf[32:36], h.DirectoryCount)
	binary.LittleEndian.PutUint32(buf[36:40], h.DirectoryBytes)
	// buf[40:128] stays zeroed (reserved).
	return buf
}

func unmarshalHeader(buf []byte) (Header, error) {
	if len(buf) != HeaderSize {
		return Header{}, &verr.FileFormatError{Reason: fmt.Sprintf("header must be %d bytes, got %d", HeaderSize, len(buf))}
	}
	h := Header{
		Magic:           binary.LittleEndian.Uint64(buf[0:8]),
		Version:         binary.LittleEndian.Uint64(buf[8:16]),
		BlockLength:     binary.LittleEndian.Uint32(buf[16:20]),
		Padding:         binary.LittleEndian.Uint32(buf[20:24]),
		DirectoryOffset: binary.LittleEndian.Uint64(buf[24:32]),
		DirectoryCount:  binary.LittleEndian.Uint32(buf[32:36]),
		DirectoryBytes:  binary.LittleEndian.Uint32(buf[36:40]),
	}
	if h.Magic != Magic {
		return Header{}, &verr.FileFormatError{Reason: fmt.Sprintf("bad magic 0x%x", h.Magic)}
	}
	if h.Version>>32 != Version>>32 {
		return Header{}, &verr.FileFormatError{Reason: fmt.Sprintf("unsupported major version %d", h.Version>>32)}
	}
	return h, nil
}
