package analyzer

// Morphology uses a 3x3 square structuring element. Neighbours outside the
// image are skipped by both dilation and erosion, which keeps the pair adjoint
// so that closing and opening stay idempotent at the borders too.
const structuringRadius = 1

// Refine closes then opens the mask to bridge small gaps and strip speckle,
// then drops 8-connected components smaller than minComponentSize when it is positive.
// The input mask is not modified.
func Refine(mask *Mask, minComponentSize int) *Mask {
	out := opening(closing(mask))
	if minComponentSize > 0 {
		out = removeSmallComponents(out, minComponentSize)
	}
	return out
}

func closing(m *Mask) *Mask {
	return erode(dilate(m))
}

func opening(m *Mask) *Mask {
	return dilate(erode(m))
}

// dilate sets a pixel when any in-bounds neighbour is set
func dilate(m *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out.Bits[y*m.Width+x] = anyNeighbour(m, x, y)
		}
	}
	return out
}

// erode keeps a pixel only when every in-bounds neighbour is set
func erode(m *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out.Bits[y*m.Width+x] = allNeighbours(m, x, y)
		}
	}
	return out
}

func anyNeighbour(m *Mask, x, y int) bool {
	for ky := -structuringRadius; ky <= structuringRadius; ky++ {
		ny := y + ky
		if ny < 0 || ny >= m.Height {
			continue
		}
		for kx := -structuringRadius; kx <= structuringRadius; kx++ {
			nx := x + kx
			if nx >= 0 && nx < m.Width && m.Bits[ny*m.Width+nx] {
				return true
			}
		}
	}
	return false
}

func allNeighbours(m *Mask, x, y int) bool {
	for ky := -structuringRadius; ky <= structuringRadius; ky++ {
		ny := y + ky
		if ny < 0 || ny >= m.Height {
			continue
		}
		for kx := -structuringRadius; kx <= structuringRadius; kx++ {
			nx := x + kx
			if nx >= 0 && nx < m.Width && !m.Bits[ny*m.Width+nx] {
				return false
			}
		}
	}
	return true
}

func removeSmallComponents(m *Mask, minSize int) *Mask {
	labels, sizes := labelComponents(m)
	out := NewMask(m.Width, m.Height)
	for i, l := range labels {
		if l > 0 && sizes[l-1] >= minSize {
			out.Bits[i] = true
		}
	}
	return out
}
