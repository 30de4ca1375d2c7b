package process

import (
	"github.com/voxelio/vxblock/codec"
	"github.com/voxelio/vxblock/container"
	"github.com/voxelio/vxblock/region"
	"github.com/voxelio/vxblock/verr"
	"github.com/voxelio/vxblock/voxel"
)

// brickDims derives a codec.BrickDims from an encoded-blocked descriptor.
func brickDims(desc voxel.EncodedBlockedDesc) codec.BrickDims {
	return codec.BrickDims{
		Side:       int(desc.PaddedBrickSize()),
		BytesPerPx: desc.VoxelInfo.VoxelSize(),
	}
}

// codecBrickSource adapts a container.Reader + codec.Codec pair into a
// region.BrickSource, decoding packets on demand.
type codecBrickSource struct {
	reader *container.Reader
	codec  codec.Codec
	dims   codec.BrickDims
}

func (s codecBrickSource) ReadBrick(idx voxel.BlockIndex) ([]byte, error) {
	packets, err := s.reader.ReadBlock(idx)
	if err != nil {
		return nil, err
	}
	if packets == nil {
		return nil, nil
	}
	codecPackets := make([]codec.Packet, len(packets))
	for i, p := range packets {
		codecPackets[i] = codec.Packet{FrameIndex: i, Data: p}
	}
	data, err := s.codec.Decode(s.dims, codecPackets)
	if err != nil {
		return nil, &verr.CodecError{Reason: "brick decode", Err: err}
	}
	return data, nil
}

// codecBrickSink adapts a container.Writer + codec.Codec pair into a
// region.BrickSink, encoding bricks before appending them.
type codecBrickSink struct {
	writer *container.Writer
	codec  codec.Codec
	dims   codec.BrickDims
}

func (s codecBrickSink) WriteBrick(idx voxel.BlockIndex, data []byte) error {
	packets, err := s.codec.Encode(s.dims, data)
	if err != nil {
		return &verr.CodecError{Reason: "brick encode", Err: err}
	}
	raw := make([][]byte, len(packets))
	for i, p := range packets {
		raw[i] = p.Data
	}
	return s.writer.WriteBlock(idx, raw)
}

// EncodedBlockedSource wraps a container.Reader as a process.Source over
// its encoded-blocked descriptor.
type EncodedBlockedSource struct {
	engine region.Engine
	src    region.BrickSource
}

// NewEncodedBlockedSource builds a Source over an open container.Reader,
// decoding bricks through the named registered codec.
func NewEncodedBlockedSource(desc voxel.EncodedBlockedDesc, reader *container.Reader) (*EncodedBlockedSource, error) {
	c, err := codec.Lookup(desc.VolumeCodec)
	if err != nil {
		return nil, err
	}
	return &EncodedBlockedSource{
		engine: region.New(desc),
		src:    codecBrickSource{reader: reader, codec: c, dims: brickDims(desc)},
	}, nil
}

// ReadWindow implements Source.
func (s *EncodedBlockedSource) ReadWindow(w region.Window, sink region.Sink) error {
	return s.engine.ReadWindow(w, s.src, sink)
}

// ReadDense implements denseSource: it reads w directly into buf via the
// brick engine's dense convenience overload, letting Processor skip the
// per-voxel sink callback when its source is backed by an
// encoded-blocked container.
func (s *EncodedBlockedSource) ReadDense(w region.Window, buf []byte) error {
	return s.engine.ReadWindowDense(w, s.src, buf)
}

// EncodedBlockedTarget wraps a container.Writer as a process.TargetSink
// over its encoded-blocked descriptor.
type EncodedBlockedTarget struct {
	engine region.Engine
	sink   region.BrickSink
}

// NewEncodedBlockedTarget builds a TargetSink over an open
// container.Writer, encoding bricks through the named registered codec.
func NewEncodedBlockedTarget(desc voxel.EncodedBlockedDesc, writer *container.Writer) (*EncodedBlockedTarget, error) {
	c, err := codec.Lookup(desc.VolumeCodec)
	if err != nil {
		return nil, err
	}
	return &EncodedBlockedTarget{
		engine: region.New(desc),
		sink:   codecBrickSink{writer: writer, codec: c, dims: brickDims(desc)},
	}, nil
}

// WriteWindow implements TargetSink.
func (t *EncodedBlockedTarget) WriteWindow(w region.Window, fill region.Fill) error {
	return t.engine.WriteWindow(w, fill, t.sink)
}

// WriteDense implements denseTarget: it writes buf directly via the
// brick engine's dense convenience overload, letting Processor skip the
// per-voxel fill callback when its target is an encoded-blocked
// container.
func (t *EncodedBlockedTarget) WriteDense(w region.Window, buf []byte) error {
	return t.engine.WriteWindowDense(w, buf, t.sink)
}
