package codec

import (
	"math/rand"
	"testing"
)

func makeBrickU8(side int, fill func(x, y, z int) byte) []byte {
	dims := BrickDims{Side: side, BytesPerPx: 1}
	buf := make([]byte, dims.VolumeSize())
	for z := 0; z < side; z++ {
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				buf[z*dims.PlaneSize()+y*side+x] = fill(x, y, z)
			}
		}
	}
	return buf
}

func TestCABACDCTCodecFlatBrickRoundTrip(t *testing.T) {
	dims := BrickDims{Side: 8, BytesPerPx: 1}
	src := makeBrickU8(8, func(x, y, z int) byte { return 42 })

	c := NewCABACDCTCodec(10)
	packets, err := c.Encode(dims, src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(packets) != dims.Side {
		t.Fatalf("want %d packets, got %d", dims.Side, len(packets))
	}

	got, err := c.Decode(dims, packets)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(src) {
		t.Fatalf("decoded length %d != source length %d", len(got), len(src))
	}
	// A perfectly flat brick quantizes to an exact all-zero residual at
	// every QP, so reconstruction should be lossless.
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("byte %d: want %d got %d", i, src[i], got[i])
		}
	}
}

func TestCABACDCTCodecGradientBrickRoundTripBounded(t *testing.T) {
	dims := BrickDims{Side: 9, BytesPerPx: 1} // not a multiple of 4: exercises boundary blocks
	src := makeBrickU8(9, func(x, y, z int) byte { return byte((x*7 + y*3 + z*11) % 256) })

	c := NewCABACDCTCodec(20)
	packets, err := c.Encode(dims, src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(dims, packets)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var maxDiff int
	for i := range src {
		d := int(got[i]) - int(src[i])
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 80 {
		t.Fatalf("lossy reconstruction drifted too far: max abs diff %d", maxDiff)
	}
}

func TestCABACDCTCodecU16RoundTrip(t *testing.T) {
	dims := BrickDims{Side: 6, BytesPerPx: 2}
	buf := make([]byte, dims.VolumeSize())
	r := rand.New(rand.NewSource(7))
	for i := 0; i < len(buf); i += 2 {
		v := uint16(30000 + r.Intn(2000))
		buf[i] = byte(v)
		buf[i+1] = byte(v >> 8)
	}

	c := NewCABACDCTCodec(4)
	packets, err := c.Encode(dims, buf)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(dims, packets)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(buf) {
		t.Fatalf("length mismatch: %d vs %d", len(got), len(buf))
	}
}

func TestCABACDCTCodecRejectsMismatchedSource(t *testing.T) {
	dims := BrickDims{Side: 4, BytesPerPx: 1}
	c := NewCABACDCTCodec(26)
	if _, err := c.Encode(dims, make([]byte, 3)); err == nil {
		t.Fatal("expected error for short source buffer")
	}
}

func TestCABACDCTCodecRejectsWrongPacketCount(t *testing.T) {
	dims := BrickDims{Side: 4, BytesPerPx: 1}
	c := NewCABACDCTCodec(26)
	if _, err := c.Decode(dims, []Packet{{FrameIndex: 0}}); err == nil {
		t.Fatal("expected error for packet count mismatch")
	}
}

func TestRegistryLookup(t *testing.T) {
	c, err := Lookup("cabac-dct")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if _, ok := c.(*CABACDCTCodec); !ok {
		t.Fatalf("expected *CABACDCTCodec, got %T", c)
	}
	if _, err := Lookup("does-not-exist"); err == nil {
		t.Fatal("expected error for unregistered codec name")
	}
}
