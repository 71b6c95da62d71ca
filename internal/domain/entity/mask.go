package entity

import "fmt"

// Mask is a boolean region grid with the same dimensions as the media it
// was segmented from. Bits is row-major; any non-zero byte marks the pixel
// as inside the region, which lets infra layers hand the buffer straight
// to OpenCV mask operations.
type Mask struct {
	Width  int
	Height int
	Bits   []byte
}

func NewMask(width, height int) Mask {
	return Mask{
		Width:  width,
		Height: height,
		Bits:   make([]byte, width*height),
	}
}

func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x] != 0
}

func (m Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	if v {
		m.Bits[y*m.Width+x] = 1
	} else {
		m.Bits[y*m.Width+x] = 0
	}
}

// Count returns the number of pixels inside the region.
func (m Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b != 0 {
			n++
		}
	}
	return n
}

// Validate checks that the mask matches the media dimensions. Mask and
// media dimensions must agree for the lifetime of a run.
func (m Mask) Validate(width, height int) error {
	if m.Width != width || m.Height != height {
		return fmt.Errorf("mask dimensions %dx%d do not match media %dx%d",
			m.Width, m.Height, width, height)
	}
	if len(m.Bits) != m.Width*m.Height {
		return fmt.Errorf("mask buffer length %d does not match %dx%d",
			len(m.Bits), m.Width, m.Height)
	}
	return nil
}

// Clone returns a copy that does not share the bit buffer.
func (m Mask) Clone() Mask {
	out := Mask{Width: m.Width, Height: m.Height, Bits: make([]byte, len(m.Bits))}
	copy(out.Bits, m.Bits)
	return out
}

// VideoSegments maps frame index -> object ID -> mask, as produced by
// propagating an accepted object across every extracted frame. A missing
// frame/object entry means that object's region is left unmodified in
// that frame.
type VideoSegments map[int]map[int]Mask
