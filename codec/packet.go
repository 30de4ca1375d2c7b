package codec

// Packet is one coded unit returned by Codec.Encode, grounded on
// avutil.Packet in ffmpeggo/avutil/packet.go: a thin byte-carrier with
// enough addressing to let the caller frame it on disk. A CABACDCTCodec
// brick call emits exactly one Packet per z-frame, so packet boundaries
// map 1:1 onto brick depth (len(packets) == dims.Side).
type Packet struct {
	FrameIndex int // z-frame within the brick this packet encodes
	Data       []byte
}

// BrickDims is the shape of one padded brick passed to a Codec: voxel
// type/format plus the brick's own padded side length B (same on all
// three axes — a brick is always a cube of side L+2P).
type BrickDims struct {
	Side       int // B = L + 2P
	BytesPerPx int // 1 for u8,R ; 2 for u16,R
}

// PlaneSize returns the byte length of one z-frame (Side*Side*BytesPerPx).
func (d BrickDims) PlaneSize() int {
	return d.Side * d.Side * d.BytesPerPx
}

// VolumeSize returns the total byte length of the brick (Side planes).
func (d BrickDims) VolumeSize() int {
	return d.PlaneSize() * d.Side
}
