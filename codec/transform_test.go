package codec

import "testing"

func TestForwardInverseRoundTrip(t *testing.T) {
	block := [16]int32{
		10, 20, 30, 40,
		15, 25, 35, 45,
		5, 15, 25, 35,
		0, 10, 20, 30,
	}
	coeff := Forward4x4(block)
	back := Inverse4x4(coeff)
	for i := range block {
		diff := back[i] - block[i]
		if diff < -2 || diff > 2 {
			t.Fatalf("index %d: want ~%d got %d", i, block[i], back[i])
		}
	}
}

func TestQuantizeDequantizeZeroPreserved(t *testing.T) {
	var zero [16]int32
	q := Quantize4x4(zero, 30)
	for _, v := range q {
		if v != 0 {
			t.Fatalf("quantizing an all-zero block should stay zero, got %v", q)
		}
	}
	dq := Dequantize4x4(q, 30)
	for _, v := range dq {
		if v != 0 {
			t.Fatalf("dequantizing an all-zero block should stay zero, got %v", dq)
		}
	}
}

func TestQuantizeRoundTripApproximatelyPreservesDC(t *testing.T) {
	coeff := [16]int32{4096, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	q := Quantize4x4(coeff, 20)
	dq := Dequantize4x4(q, 20)
	if dq[0] == 0 {
		t.Fatalf("a large DC coefficient should survive quantization at qp=20, got %v", dq)
	}
}
