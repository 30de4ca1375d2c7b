package container

import (
	"encoding/binary"

	"github.com/voxelio/vxblock/voxel"
)

// BlockInfo is one 64-byte directory record: the brick it describes, its
// byte offset and span in the payload region, and the number of framed
// packets within that span.
type BlockInfo struct {
	Index       voxel.BlockIndex
	Offset      uint64
	Size        uint64
	PacketCount uint64
}

// IsSentinel reports whether bi is an unused directory slot.
func (bi BlockInfo) IsSentinel() bool {
	return bi.Index.BX == SentinelIndex && bi.Index.BY == SentinelIndex && bi.Index.BZ == SentinelIndex
}

func sentinelBlockInfo() BlockInfo {
	return BlockInfo{Index: voxel.BlockIndex{BX: SentinelIndex, BY: SentinelIndex, BZ: SentinelIndex}}
}

func (bi BlockInfo) marshal() []byte {
	buf := make([]byte, BlockInfoSize)
	binary.LittleEndian.PutUint32(buf[0:4], bi.Index.BX)
	binary.LittleEndian.PutUint32(buf[4:8], bi.Index.BY)
	binary.LittleEndian.PutUint32(buf[8:12], bi.Index.BZ)
	binary.LittleEndian.PutUint64(buf[12:20], bi.Offset)
	binary.LittleEndian.PutUint64(buf[20:28], bi.Size)
	binary.LittleEndian.PutUint64(buf[28:36], bi.PacketCount)
	// buf[36:64] stays zeroed (reserved).
	return buf
}

func unmarshalBlockInfo(buf []byte) BlockInfo {
	return BlockInfo{
		Index: voxel.BlockIndex{
			BX: binary.LittleEndian.Uint32(buf[0:4]),
			BY: binary.LittleEndian.Uint32(buf[4:8]),
			BZ: binary.LittleEndian.Uint32(buf[8:12]),
		},
		Offset:      binary.LittleEndian.Uint64(buf[12:20]),
		Size:        binary.LittleEndian.Uint64(buf[20:28]),
		PacketCount: binary.LittleEndian.Uint64(buf[28:36]),
	}
}
