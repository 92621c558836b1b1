package video

import "fmt"

// Frame is a single video frame in YUV420 planar format.
type Frame struct {
	Width  uint16
	Height uint16
	Y      []byte
	U      []byte
	V      []byte
	// Strides for each plane; a stride of 0 means tightly packed.
	YStride int
	UStride int
	VStride int
}

// Validate checks frame dimensions against plane sizes.
func (f *Frame) Validate() error {
	if f.Width == 0 || f.Height == 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}

	expectedY := int(f.Width) * int(f.Height)
	expectedUV := int(f.Width/2) * int(f.Height/2)

	if len(f.Y) < expectedY {
		return fmt.Errorf("%w: Y plane %d bytes, need %d", ErrInvalidFrame, len(f.Y), expectedY)
	}
	if len(f.U) < expectedUV || len(f.V) < expectedUV {
		return fmt.Errorf("%w: chroma planes %d/%d bytes, need %d",
			ErrInvalidFrame, len(f.U), len(f.V), expectedUV)
	}

	return nil
}
