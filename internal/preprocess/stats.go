package preprocess

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// PageStats summarizes a page raster: mean perceptual lightness, the share
// of dark (ink) pixels and mean saturation. Saturation near zero means the
// page is effectively grayscale already.
type PageStats struct {
	MeanLightness  float64
	InkRatio       float64
	MeanSaturation float64
}

// Stats samples the page on a coarse grid and returns its statistics.
// Sampling keeps the cost independent of page resolution.
func Stats(img image.Image) PageStats {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return PageStats{}
	}

	const gridSize = 64
	strideX := width/gridSize + 1
	strideY := height/gridSize + 1

	var sumL, sumS float64
	var ink, n int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += strideY {
		for x := bounds.Min.X; x < bounds.Max.X; x += strideX {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			_, s, l := c.Hsl()
			sumL += l
			sumS += s
			if l < 0.4 {
				ink++
			}
			n++
		}
	}
	if n == 0 {
		return PageStats{}
	}
	return PageStats{
		MeanLightness:  sumL / float64(n),
		InkRatio:       float64(ink) / float64(n),
		MeanSaturation: sumS / float64(n),
	}
}
