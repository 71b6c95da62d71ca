package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/pangeans/unprompted/internal/domain/entity"
)

// Compositor applies the pixelation effect to masked regions of a frame.
// The effect is a pure function of (frame, mask, factor): the full frame
// is downsampled to floor(w/factor) x floor(h/factor) with nearest-neighbor
// resampling, upsampled back with nearest-neighbor, and copied into the
// output only where the mask is set. Repeated application with the same
// inputs is a no-op beyond the first.
type Compositor struct {
	factor int
}

func NewCompositor(factor int) *Compositor {
	return &Compositor{factor: factor}
}

// Pixelate returns a fully pixelated copy of src. The caller owns the
// returned Mat.
func (c *Compositor) Pixelate(src gocv.Mat) gocv.Mat {
	width, height := src.Cols(), src.Rows()

	smallW, smallH := width/c.factor, height/c.factor
	if smallW < 1 {
		smallW = 1
	}
	if smallH < 1 {
		smallH = 1
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(src, &small, image.Pt(smallW, smallH), 0, 0, gocv.InterpolationNearestNeighbor)

	out := gocv.NewMat()
	gocv.Resize(small, &out, image.Pt(width, height), 0, 0, gocv.InterpolationNearestNeighbor)
	return out
}

// Compose replaces the pixels of frame under mask with their pixelated
// version, in place. An all-zero mask leaves the frame unchanged.
func (c *Compositor) Compose(frame *gocv.Mat, mask entity.Mask) error {
	if err := mask.Validate(frame.Cols(), frame.Rows()); err != nil {
		return err
	}

	maskMat, err := maskToMat(mask)
	if err != nil {
		return err
	}
	defer maskMat.Close()

	pixelated := c.Pixelate(*frame)
	defer pixelated.Close()

	pixelated.CopyToWithMask(frame, maskMat)
	return nil
}

func maskToMat(m entity.Mask) (gocv.Mat, error) {
	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8U, m.Bits)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("mask to mat: %w", err)
	}
	return mat, nil
}
