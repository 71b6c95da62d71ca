package opencv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/pangeans/unprompted/internal/domain/entity"
)

// gradientFrame builds a BGR frame where every pixel value depends on its
// coordinates, so any displacement shows up in comparisons.
func gradientFrame(width, height int) gocv.Mat {
	frame := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			frame.SetUCharAt(y, x*3, uint8(x*7%256))
			frame.SetUCharAt(y, x*3+1, uint8(y*11%256))
			frame.SetUCharAt(y, x*3+2, uint8((x+y)*13%256))
		}
	}
	return frame
}

func matsEqual(t *testing.T, a, b gocv.Mat) bool {
	t.Helper()
	require.Equal(t, a.Rows(), b.Rows())
	require.Equal(t, a.Cols(), b.Cols())
	return string(a.ToBytes()) == string(b.ToBytes())
}

func TestPixelateIsDeterministic(t *testing.T) {
	frame := gradientFrame(40, 30)
	defer frame.Close()

	c := NewCompositor(10)
	first := c.Pixelate(frame)
	defer first.Close()
	second := c.Pixelate(frame)
	defer second.Close()

	assert.True(t, matsEqual(t, first, second))
	assert.Equal(t, frame.Rows(), first.Rows())
	assert.Equal(t, frame.Cols(), first.Cols())
}

func TestPixelateIsIdempotent(t *testing.T) {
	frame := gradientFrame(40, 30)
	defer frame.Close()

	c := NewCompositor(10)
	once := c.Pixelate(frame)
	defer once.Close()
	twice := c.Pixelate(once)
	defer twice.Close()

	assert.True(t, matsEqual(t, once, twice))
}

func TestPixelateSmallerThanFactor(t *testing.T) {
	frame := gradientFrame(5, 3)
	defer frame.Close()

	c := NewCompositor(20)
	out := c.Pixelate(frame)
	defer out.Close()

	// downsample clamps at 1x1, so the result is a solid color
	assert.Equal(t, 3, out.Rows())
	assert.Equal(t, 5, out.Cols())
	first := out.GetVecbAt(0, 0)
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, first, out.GetVecbAt(y, x))
		}
	}
}

func TestComposeEmptyMaskLeavesFrameUnchanged(t *testing.T) {
	frame := gradientFrame(40, 30)
	defer frame.Close()
	original := frame.Clone()
	defer original.Close()

	c := NewCompositor(10)
	require.NoError(t, c.Compose(&frame, entity.NewMask(40, 30)))

	assert.True(t, matsEqual(t, original, frame))
}

func TestComposeFullMaskEqualsPixelate(t *testing.T) {
	frame := gradientFrame(40, 30)
	defer frame.Close()

	c := NewCompositor(10)
	want := c.Pixelate(frame)
	defer want.Close()

	mask := entity.NewMask(40, 30)
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			mask.Set(x, y, true)
		}
	}
	require.NoError(t, c.Compose(&frame, mask))

	assert.True(t, matsEqual(t, want, frame))
}

func TestComposeLeavesOutsidePixelsUntouched(t *testing.T) {
	frame := gradientFrame(40, 30)
	defer frame.Close()
	original := frame.Clone()
	defer original.Close()

	// mask covers the left half only
	mask := entity.NewMask(40, 30)
	for y := 0; y < 30; y++ {
		for x := 0; x < 20; x++ {
			mask.Set(x, y, true)
		}
	}

	c := NewCompositor(10)
	require.NoError(t, c.Compose(&frame, mask))

	for y := 0; y < 30; y++ {
		for x := 20; x < 40; x++ {
			assert.Equal(t, original.GetVecbAt(y, x), frame.GetVecbAt(y, x),
				"pixel (%d,%d) outside the mask changed", x, y)
		}
	}
}

func TestComposeRejectsMismatchedMask(t *testing.T) {
	frame := gradientFrame(40, 30)
	defer frame.Close()

	c := NewCompositor(10)
	assert.Error(t, c.Compose(&frame, entity.NewMask(30, 40)))
}
