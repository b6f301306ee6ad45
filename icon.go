package tray

import (
	"fmt"
	"image"
	"image/draw"
)

// pixmap is the wire representation of a single icon image, marshalled as
// (iiay). Bytes are ARGB32 in network byte order, as the
// StatusNotifierItem specification requires.
type pixmap struct {
	Width  int32
	Height int32
	Bytes  []byte
}

// iconSizes is the ladder of square sizes offered to hosts. Some hosts
// don't reliably scale very large pixmaps, so a few common tray sizes are
// produced up front.
var iconSizes = [...]int{16, 24, 32, 48}

// buildPixmaps converts a raw RGBA32 image into the ladder of wire
// pixmaps: every ladder size not exceeding the source, each resampled
// with nearest-neighbor. A source smaller than every rung is passed
// through unscaled.
func buildPixmaps(img IconImage) ([]pixmap, error) {
	w, h := img.Width, img.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("icon has zero size")
	}

	if len(img.Bytes) != w*h*4 {
		return nil, fmt.Errorf("invalid icon buffer: expected %d bytes for %dx%d RGBA32, got %d", w*h*4, w, h, len(img.Bytes))
	}

	argb := rgbaToARGB(img.Bytes)

	var pixmaps []pixmap
	for _, size := range iconSizes {
		if size > w || size > h {
			continue
		}

		pixmaps = append(pixmaps, pixmap{
			Width:  int32(size),
			Height: int32(size),
			Bytes:  resizeNearest(argb, w, h, size, size),
		})
	}

	if len(pixmaps) == 0 {
		pixmaps = append(pixmaps, pixmap{
			Width:  int32(w),
			Height: int32(h),
			Bytes:  argb,
		})
	}

	return pixmaps, nil
}

// resizeNearest resamples a 4-byte-per-pixel buffer so that destination
// pixel (x, y) copies source pixel (x*srcW/dstW, y*srcH/dstH).
func resizeNearest(src []byte, srcW, srcH, dstW, dstH int) []byte {
	dst := make([]byte, dstW*dstH*4)

	for y := 0; y < dstH; y++ {
		sy := y * srcH / dstH
		for x := 0; x < dstW; x++ {
			sx := x * srcW / dstW
			s := (sy*srcW + sx) * 4
			d := (y*dstW + x) * 4
			copy(dst[d:d+4], src[s:s+4])
		}
	}

	return dst
}

// rgbaToARGB permutes R,G,B,A bytes into A,R,G,B. A straight per-pixel
// byte permutation, no blending.
func rgbaToARGB(src []byte) []byte {
	dst := make([]byte, len(src))

	for i := 0; i < len(src); i += 4 {
		dst[i] = src[i+3]
		dst[i+1] = src[i]
		dst[i+2] = src[i+1]
		dst[i+3] = src[i+2]
	}

	return dst
}

// NewIconImage converts any decoded image into an [IconImage].
func NewIconImage(img image.Image) IconImage {
	bounds := img.Bounds()

	rgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return IconImage{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Bytes:  rgba.Pix,
	}
}
