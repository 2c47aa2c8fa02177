// Package preprocess applies image cleanup transforms to page rasters before
// recognition.
//
// Transforms run in a fixed order regardless of how the flags were declared:
// grayscale, denoise, threshold, deskew, scale-up, background removal.
// Several steps are order-sensitive; deskew in particular estimates the text
// angle on the binarized image, so it must follow thresholding.
package preprocess

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	"github.com/Pietr00ass/OCR-SG/internal/document"
	"github.com/Pietr00ass/OCR-SG/internal/log"
)

// Options enables individual transforms. The zero value disables everything.
type Options struct {
	Grayscale        bool
	Denoise          bool
	Threshold        bool
	Deskew           bool
	ScaleUp          bool
	RemoveBackground bool
}

// scaleUpFactor matches the application default for the scale-up transform.
const scaleUpFactor = 1.5

// Apply runs the enabled transforms on a page image and returns a new page
// image with the same index. The input raster is never mutated.
func Apply(page document.PageImage, opts Options) document.PageImage {
	img := page.Image

	if opts.Grayscale {
		stats := Stats(img)
		if stats.MeanSaturation < 0.01 {
			log.Debugf("page %d already grayscale (saturation %.4f), skipping conversion", page.Index, stats.MeanSaturation)
		} else {
			img = imaging.Grayscale(img)
		}
	}

	if opts.Denoise {
		img = effect.Median(img, 3)
	}

	if opts.Threshold {
		img = segment.Threshold(img, otsuLevel(img))
	}

	if opts.Deskew {
		if angle := estimateSkew(img); angle != 0 {
			log.Debugf("page %d skew estimate %.2f degrees", page.Index, angle)
			img = imaging.Rotate(img, -angle, color.White)
		}
	}

	if opts.ScaleUp {
		bounds := img.Bounds()
		w := int(float64(bounds.Dx()) * scaleUpFactor)
		img = imaging.Resize(img, w, 0, imaging.Lanczos)
	}

	if opts.RemoveBackground {
		img = removeBackground(img)
	}

	return document.PageImage{Index: page.Index, Image: img}
}

// otsuLevel computes the Otsu binarization threshold from the luminance
// histogram of img.
func otsuLevel(img image.Image) uint8 {
	var hist [256]int
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 128
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[luminance8(img.At(x, y))]++
		}
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	var best float64
	level := uint8(128)
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = uint8(i)
		}
	}
	return level
}

// removeBackground subtracts a heavily blurred copy of the page from itself
// and renormalizes, flattening uneven illumination and paper texture.
func removeBackground(img image.Image) image.Image {
	gray := grayOf(img)
	bg := grayOf(effect.Median(gray, 21))

	bounds := gray.Bounds()
	diff := image.NewGray(bounds)
	lo, hi := uint8(255), uint8(0)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := gray.GrayAt(x, y).Y
			b := bg.GrayAt(x, y).Y
			d := g - b
			if b > g {
				d = b - g
			}
			v := 255 - d
			diff.SetGray(x, y, color.Gray{Y: v})
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	if hi <= lo {
		return diff
	}
	span := int(hi) - int(lo)
	for i, v := range diff.Pix {
		diff.Pix[i] = uint8((int(v) - int(lo)) * 255 / span)
	}
	return diff
}

// grayOf converts any image to *image.Gray.
func grayOf(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.SetGray(x, y, color.Gray{Y: luminance8(img.At(x, y))})
		}
	}
	return gray
}

// luminance8 computes 8-bit ITU-R BT.601 luminance of a color.
func luminance8(c color.Color) uint8 {
	r, g, b, _ := c.RGBA()
	l := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
	if l > 255 {
		l = 255
	}
	return uint8(l)
}
