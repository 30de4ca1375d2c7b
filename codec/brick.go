// Package codec implements the pluggable brick codec contract (C2): a
// padded brick of voxels in, a list of per-z-frame Packets out, and back.
// The default CABACDCTCodec is a closed-loop DC/temporal-predictive
// transform coder in the shape of the teacher's HEVC encoder
// (vulkango/cabac_hevc.go, ffmpeggo/avcodec/{dct,residual,hevc_encoder}.go)
// but with a real, symmetric entropy and reconstruction path so a brick
// that goes in through Encode comes back out through Decode.
package codec

import (
	"fmt"

	"github.com/voxelio/vxblock/verr"
)

// Codec converts one padded brick to a packet list and back. Encode and
// Decode are both stateless across calls: all entropy-context state is
// local to a single brick.
type Codec interface {
	Encode(dims BrickDims, src []byte) ([]Packet, error)
	Decode(dims BrickDims, packets []Packet) ([]byte, error)
}

// CABACDCTCodec is the default Codec: per z-frame intra/temporal DC
// prediction, 4x4 integer DCT residual coding, and adaptive binary
// arithmetic entropy coding.
type CABACDCTCodec struct {
	// QP is the quantization parameter in [0,51], following the HEVC
	// convention the teacher's tables are indexed by (qp/6, qp%6).
	QP int
}

// NewCABACDCTCodec returns a codec at the given quantization parameter.
func NewCABACDCTCodec(qp int) *CABACDCTCodec {
	return &CABACDCTCodec{QP: qp}
}

const blockDim = 4

type brickContexts struct {
	allZero uint16
	sig     [blockDim * blockDim]uint16
}

func newBrickContexts() *brickContexts {
	c := &brickContexts{allZero: newProb()}
	for i := range c.sig {
		c.sig[i] = newProb()
	}
	return c
}

func (c *CABACDCTCodec) maxSample(bytesPerPx int) int32 {
	if bytesPerPx == 1 {
		return 255
	}
	return 65535
}

func clip32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Encode implements Codec.
func (c *CABACDCTCodec) Encode(dims BrickDims, src []byte) ([]Packet, error) {
	if dims.Side <= 0 || (dims.BytesPerPx != 1 && dims.BytesPerPx != 2) {
		return nil, &verr.CodecError{Reason: fmt.Sprintf("invalid brick dims %+v", dims)}
	}
	if len(src) != dims.VolumeSize() {
		return nil, &verr.CodecError{Reason: fmt.Sprintf("src length %d does not match brick volume %d", len(src), dims.VolumeSize())}
	}

	planeLen := dims.Side * dims.Side
	packets := make([]Packet, 0, dims.Side)
	var prevRecon []int32

	for z := 0; z < dims.Side; z++ {
		plane := readPlane(src, dims, z)
		recon := make([]int32, planeLen)
		enc := newRangeEncoder()
		ctx := newBrickContexts()

		c.codeFrame(dims, plane, recon, prevRecon, z == 0, ctx, enc, nil)

		packets = append(packets, Packet{FrameIndex: z, Data: enc.finish()})
		prevRecon = recon
	}
	return packets, nil
}

// Decode implements Codec.
func (c *CABACDCTCodec) Decode(dims BrickDims, packets []Packet) ([]byte, error) {
	if dims.Side <= 0 || (dims.BytesPerPx != 1 && dims.BytesPerPx != 2) {
		return nil, &verr.CodecError{Reason: fmt.Sprintf("invalid brick dims %+v", dims)}
	}
	if len(packets) != dims.Side {
		return nil, &verr.CodecError{Reason: fmt.Sprintf("packet count %d does not match brick side %d", len(packets), dims.Side)}
	}

	planeLen := dims.Side * dims.Side
	out := make([]byte, dims.VolumeSize())
	var prevRecon []int32

	for z := 0; z < dims.Side; z++ {
		pkt := packets[z]
		if pkt.FrameIndex != z {
			return nil, &verr.CodecError{Reason: fmt.Sprintf("packet %d carries frame index %d", z, pkt.FrameIndex)}
		}
		dec := newRangeDecoder(pkt.Data)
		ctx := newBrickContexts()
		recon := make([]int32, planeLen)

		c.codeFrame(dims, nil, recon, prevRecon, z == 0, ctx, nil, dec)

		writePlane(out, dims, z, recon)
		prevRecon = recon
	}
	return out, nil
}

// codeFrame runs the shared encode/decode block loop. Exactly one of
// (enc, dec) is non-nil; src is required (and recon written) when
// encoding, nil when decoding. recon is always filled in with the
// reconstructed frame on return.
func (c *CABACDCTCodec) codeFrame(dims BrickDims, src []int32, recon []int32, prevRecon []int32, intra bool, ctx *brickContexts, enc *rangeEncoder, dec *rangeDecoder) {
	side := dims.Side
	maxVal := c.maxSample(dims.BytesPerPx)
	blocksPerSide := (side + blockDim - 1) / blockDim

	for by := 0; by < blocksPerSide; by++ {
		for bx := 0; bx < blocksPerSide; bx++ {
			x0, y0 := bx*blockDim, by*blockDim

			pred := c.predictBlock(side, x0, y0, recon, prevRecon, intra, maxVal)

			var actual [16]int32
			if enc != nil {
				for dy := 0; dy < blockDim; dy++ {
					for dx := 0; dx < blockDim; dx++ {
						x, y := x0+dx, y0+dy
						if x < side && y < side {
							actual[dy*blockDim+dx] = src[y*side+x]
						}
					}
				}
			}

			var q [16]int32
			if enc != nil {
				var residual [16]int32
				for i := range residual {
					residual[i] = actual[i] - pred[i]
				}
				coeff := Forward4x4(residual)
				q = Quantize4x4(coeff, c.QP)
				c.encodeBlock(ctx, enc, q)
			} else {
				q = c.decodeBlock(ctx, dec)
			}

			dq := Dequantize4x4(q, c.QP)
			reconResidual := Inverse4x4(dq)

			for dy := 0; dy < blockDim; dy++ {
				for dx := 0; dx < blockDim; dx++ {
					x, y := x0+dx, y0+dy
					if x < side && y < side {
						v := clip32(pred[dy*blockDim+dx]+reconResidual[dy*blockDim+dx], 0, maxVal)
						recon[y*side+x] = v
					}
				}
			}
		}
	}
}

// predictBlock computes the prediction for the 4x4 block at (x0,y0): a
// DC/left-neighbor spatial predictor for the first z-frame of a brick,
// or a direct co-located copy from the previous frame's reconstruction
// otherwise.
func (c *CABACDCTCodec) predictBlock(side, x0, y0 int, recon []int32, prevRecon []int32, intra bool, maxVal int32) [16]int32 {
	var pred [16]int32
	if !intra {
		for dy := 0; dy < blockDim; dy++ {
			for dx := 0; dx < blockDim; dx++ {
				x, y := x0+dx, y0+dy
				if x < side && y < side {
					pred[dy*blockDim+dx] = prevRecon[y*side+x]
				}
			}
		}
		return pred
	}

	dc := maxVal/2 + 1
	haveLeft := x0 > 0
	haveTop := y0 > 0
	if haveLeft || haveTop {
		var sum, n int32
		if haveLeft {
			for dy := 0; dy < blockDim && y0+dy < side; dy++ {
				sum += recon[(y0+dy)*side+(x0-1)]
				n++
			}
		}
		if haveTop {
			for dx := 0; dx < blockDim && x0+dx < side; dx++ {
				sum += recon[(y0-1)*side+(x0+dx)]
				n++
			}
		}
		if n > 0 {
			dc = (sum + n/2) / n
		}
	}
	for i := range pred {
		pred[i] = dc
	}
	return pred
}

// encodeBlock entropy-codes one set of quantized 4x4 coefficients: a
// single all-zero flag short-circuits the common flat-region case,
// otherwise each position carries a significance flag, a bypass sign,
// and an Exp-Golomb-coded magnitude.
func (c *CABACDCTCodec) encodeBlock(ctx *brickContexts, enc *rangeEncoder, q [16]int32) {
	allZero := 1
	for _, v := range q {
		if v != 0 {
			allZero = 0
			break
		}
	}
	enc.encodeBit(&ctx.allZero, 1-allZero)
	if allZero == 1 {
		return
	}
	for i, v := range q {
		sig := 0
		if v != 0 {
			sig = 1
		}
		enc.encodeBit(&ctx.sig[i], sig)
		if sig == 0 {
			continue
		}
		sign := 0
		mag := v
		if v < 0 {
			sign = 1
			mag = -v
		}
		enc.encodeBypass(sign)
		enc.encodeExpGolombBypass(uint32(mag - 1))
	}
}

func (c *CABACDCTCodec) decodeBlock(ctx *brickContexts, dec *rangeDecoder) [16]int32 {
	var q [16]int32
	notAllZero := dec.decodeBit(&ctx.allZero)
	if notAllZero == 0 {
		return q
	}
	for i := range q {
		sig := dec.decodeBit(&ctx.sig[i])
		if sig == 0 {
			continue
		}
		sign := dec.decodeBypass()
		mag := int32(dec.decodeExpGolombBypass()) + 1
		if sign == 1 {
			mag = -mag
		}
		q[i] = mag
	}
	return q
}

func readPlane(src []byte, dims BrickDims, z int) []int32 {
	planeLen := dims.Side * dims.Side
	plane := make([]int32, planeLen)
	off := z * dims.PlaneSize()
	if dims.BytesPerPx == 1 {
		for i := 0; i < planeLen; i++ {
			plane[i] = int32(src[off+i])
		}
	} else {
		for i := 0; i < planeLen; i++ {
			lo := src[off+2*i]
			hi := src[off+2*i+1]
			plane[i] = int32(lo) | int32(hi)<<8
		}
	}
	return plane
}

func writePlane(dst []byte, dims BrickDims, z int, plane []int32) {
	off := z * dims.PlaneSize()
	if dims.BytesPerPx == 1 {
		for i, v := range plane {
			dst[off+i] = byte(v)
		}
	} else {
		for i, v := range plane {
			dst[off+2*i] = byte(v)
			dst[off+2*i+1] = byte(v >> 8)
		}
	}
}
