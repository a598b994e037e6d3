package ffmpeg

import (
	"fmt"
	"math"
)

// Geometry is the output frame size and rate of a transform.
type Geometry struct {
	Width  int
	Height int
	FPS    int
}

// PlanGeometry scales the probed size by scale and the probed frame rate by
// fpsFactor, rounding each to the nearest integer:
//
//	width  = round(w * scale)
//	height = round(h * scale)
//	fps    = round(num * fpsFactor / den)
func PlanGeometry(info StreamInfo, scale, fpsFactor float64) (Geometry, error) {
	g := Geometry{
		Width:  int(math.Round(float64(info.Width) * scale)),
		Height: int(math.Round(float64(info.Height) * scale)),
	}
	if info.FrameRateDen > 0 {
		g.FPS = int(math.Round(float64(info.FrameRateNum) * fpsFactor / float64(info.FrameRateDen)))
	}

	if g.Width <= 0 || g.Height <= 0 {
		return Geometry{}, fmt.Errorf("scaled frame size %dx%d is empty", g.Width, g.Height)
	}
	if g.FPS <= 0 {
		return Geometry{}, fmt.Errorf("scaled frame rate %d/%d x %v rounds to zero", info.FrameRateNum, info.FrameRateDen, fpsFactor)
	}
	return g, nil
}

// VideoFilter renders the filter graph applied to the first input.
func (g Geometry) VideoFilter() string {
	return fmt.Sprintf("[0:v]scale=%d:%d,fps=fps=%d[v]", g.Width, g.Height, g.FPS)
}
