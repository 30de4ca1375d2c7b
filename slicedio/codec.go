// Package slicedio implements the sliced voxel-file I/O adapter (the
// other half of C5): an indexed directory of 2-D image slices, one file
// per z index, backed by golang.org/x/image/tiff — the concrete
// fulfillment of the TIFF contract surface the distilled spec leaves
// external.
package slicedio

import (
	"bytes"
	"image"

	"golang.org/x/image/tiff"

	"github.com/voxelio/vxblock/verr"
	"github.com/voxelio/vxblock/voxel"
)

// decodePlane reads a TIFF slice and returns it as a row-major byte
// buffer in the system's native little-endian voxel layout (matching
// codec.readPlane/writePlane), sized width*height*voxelSize.
func decodePlane(data []byte, info voxel.Info, width, height uint64) ([]byte, error) {
	img, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &verr.FileFormatError{Reason: "tiff decode: " + err.Error()}
	}

	voxelSize := info.VoxelSize()
	out := make([]byte, width*height*uint64(voxelSize))

	switch info.Type {
	case voxel.TypeU8:
		gray, ok := img.(*image.Gray)
		if !ok {
			gray = grayFrom(img)
		}
		for y := uint64(0); y < height; y++ {
			row := gray.Pix[int(y)*gray.Stride : int(y)*gray.Stride+int(width)]
			copy(out[y*width:(y+1)*width], row)
		}
	case voxel.TypeU16:
		gray16, ok := img.(*image.Gray16)
		if !ok {
			gray16 = gray16From(img)
		}
		for y := uint64(0); y < height; y++ {
			for x := uint64(0); x < width; x++ {
				srcOff := int(y)*gray16.Stride + int(x)*2
				hi, lo := gray16.Pix[srcOff], gray16.Pix[srcOff+1] // big-endian in image.Gray16
				dstOff := (y*width + x) * 2
				out[dstOff] = lo
				out[dstOff+1] = hi
			}
		}
	default:
		return nil, &verr.FileFormatError{Reason: "unsupported voxel type for sliced I/O"}
	}
	return out, nil
}

// encodePlane writes plane (row-major, native little-endian layout) as a
// TIFF image.
func encodePlane(plane []byte, info voxel.Info, width, height uint64) ([]byte, error) {
	var buf bytes.Buffer
	switch info.Type {
	case voxel.TypeU8:
		img := image.NewGray(image.Rect(0, 0, int(width), int(height)))
		for y := uint64(0); y < height; y++ {
			copy(img.Pix[int(y)*img.Stride:int(y)*img.Stride+int(width)], plane[y*width:(y+1)*width])
		}
		if err := tiff.Encode(&buf, img, nil); err != nil {
			return nil, &verr.FileFormatError{Reason: "tiff encode: " + err.Error()}
		}
	case voxel.TypeU16:
		img := image.NewGray16(image.Rect(0, 0, int(width), int(height)))
		for y := uint64(0); y < height; y++ {
			for x := uint64(0); x < width; x++ {
				srcOff := (y*width + x) * 2
				lo, hi := plane[srcOff], plane[srcOff+1]
				dstOff := int(y)*img.Stride + int(x)*2
				img.Pix[dstOff] = hi
				img.Pix[dstOff+1] = lo
			}
		}
		if err := tiff.Encode(&buf, img, nil); err != nil {
			return nil, &verr.FileFormatError{Reason: "tiff encode: " + err.Error()}
		}
	default:
		return nil, &verr.FileFormatError{Reason: "unsupported voxel type for sliced I/O"}
	}
	return buf.Bytes(), nil
}

func grayFrom(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func gray16From(img image.Image) *image.Gray16 {
	b := img.Bounds()
	out := image.NewGray16(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}
