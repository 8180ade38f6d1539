package analyzer

// labelComponents assigns 8-connected component labels starting at 1.
// labels[i] is 0 for background; sizes[l-1] is the pixel area of label l.
func labelComponents(m *Mask) (labels []int, sizes []int) {
	labels = make([]int, len(m.Bits))
	queue := make([]int, 0, 64)

	next := 0
	for start, set := range m.Bits {
		if !set || labels[start] != 0 {
			continue
		}
		next++
		labels[start] = next
		area := 0

		queue = append(queue[:0], start)
		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			area++

			x, y := idx%m.Width, idx/m.Width
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= m.Height {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= m.Width {
						continue
					}
					n := ny*m.Width + nx
					if m.Bits[n] && labels[n] == 0 {
						labels[n] = next
						queue = append(queue, n)
					}
				}
			}
		}
		sizes = append(sizes, area)
	}
	return labels, sizes
}
