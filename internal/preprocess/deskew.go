package preprocess

import (
	"image"
	"math"
)

// Skew estimation parameters. Text lines are near-horizontal, so only line
// normals close to 90 degrees are considered; anything steeper than maxSkew
// is treated as structure rather than skew and ignored.
const (
	maxSkew       = 15.0 // degrees
	angleStep     = 0.25 // degrees per accumulator bin
	maxInkSamples = 20000
)

// estimateSkew returns the dominant text-line angle of the page in degrees,
// counter-clockwise positive. It votes ink pixels into a Hough accumulator
// restricted to near-horizontal normals and picks the angle whose strongest
// line collects the most votes. Returns 0 when no reliable estimate exists.
func estimateSkew(img image.Image) float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width < 8 || height < 8 {
		return 0
	}

	ink := collectInkPixels(img, maxInkSamples)
	if len(ink) < 100 {
		return 0
	}

	numAngles := int(2*maxSkew/angleStep) + 1
	maxDist := int(math.Sqrt(float64(width*width + height*height)))

	// accumulator[angle][rho]: votes for a line with the given normal angle.
	accumulator := make([][]int, numAngles)
	sines := make([]float64, numAngles)
	cosines := make([]float64, numAngles)
	for i := range accumulator {
		accumulator[i] = make([]int, 2*maxDist)
		theta := (90 - maxSkew + float64(i)*angleStep) * math.Pi / 180
		sines[i] = math.Sin(theta)
		cosines[i] = math.Cos(theta)
	}

	for _, p := range ink {
		for i := 0; i < numAngles; i++ {
			rho := float64(p.X)*cosines[i] + float64(p.Y)*sines[i]
			rhoIdx := int(rho) + maxDist
			if rhoIdx >= 0 && rhoIdx < 2*maxDist {
				accumulator[i][rhoIdx]++
			}
		}
	}

	// The best angle is the one whose single strongest line has the most
	// votes: at the correct rotation all ink of a text line falls into the
	// same rho bin. A line normal at theta means the text is tilted by
	// 90-theta degrees counter-clockwise.
	bestAngle := 0.0
	bestVotes := 0
	for i := 0; i < numAngles; i++ {
		peak := 0
		for _, v := range accumulator[i] {
			if v > peak {
				peak = v
			}
		}
		if peak > bestVotes {
			bestVotes = peak
			bestAngle = maxSkew - float64(i)*angleStep
		}
	}

	// Require the winning line to hold a meaningful share of the ink.
	if bestVotes < len(ink)/50 {
		return 0
	}
	if math.Abs(bestAngle) < angleStep {
		return 0
	}
	return bestAngle
}

// collectInkPixels samples dark pixels from the image, striding when the
// page holds more ink than the limit allows.
func collectInkPixels(img image.Image, limit int) []image.Point {
	bounds := img.Bounds()
	points := make([]image.Point, 0, limit)

	stride := 1
	area := bounds.Dx() * bounds.Dy()
	// A mostly-white page still needs a bounded scan cost.
	for area/(stride*stride) > limit*20 {
		stride++
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			if luminance8(img.At(x, y)) < 96 {
				points = append(points, image.Point{X: x - bounds.Min.X, Y: y - bounds.Min.Y})
				if len(points) == limit {
					return points
				}
			}
		}
	}
	return points
}
