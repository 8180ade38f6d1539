package analyzer

// Mask is a row-major boolean buffer with the same dimensions as its source image.
// A true bit marks a pixel classified as staining or interference.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask returns an all-false mask
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Bits:   make([]bool, width*height),
	}
}

// FullMask returns an all-true mask
func FullMask(width, height int) *Mask {
	m := NewMask(width, height)
	for i := range m.Bits {
		m.Bits[i] = true
	}
	return m
}

// At reports the bit at (x, y). Out-of-range coordinates read as false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Set writes the bit at (x, y)
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Count returns the number of true bits
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Clone returns a deep copy
func (m *Mask) Clone() *Mask {
	bits := make([]bool, len(m.Bits))
	copy(bits, m.Bits)
	return &Mask{Width: m.Width, Height: m.Height, Bits: bits}
}

// SameSize reports whether both masks share dimensions
func (m *Mask) SameSize(o *Mask) bool {
	return o != nil && m.Width == o.Width && m.Height == o.Height
}

// Equal reports whether both masks have identical dimensions and bits
func (m *Mask) Equal(o *Mask) bool {
	if !m.SameSize(o) {
		return false
	}
	for i, b := range m.Bits {
		if o.Bits[i] != b {
			return false
		}
	}
	return true
}

// And returns the intersection of two equally sized masks
func (m *Mask) And(o *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for i, b := range m.Bits {
		out.Bits[i] = b && o.Bits[i]
	}
	return out
}

// Or returns the union of two equally sized masks
func (m *Mask) Or(o *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for i, b := range m.Bits {
		out.Bits[i] = b || o.Bits[i]
	}
	return out
}
