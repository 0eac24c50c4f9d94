package raster

// Labels holds the result of connected-component labeling: a raster of
// component IDs (0 = background, components numbered from 1) and the
// component count.
type Labels struct {
	H, W  int
	IDs   []int32
	Count int
}

// LabelComponents labels 8-connected components of the mask with a
// breadth-first flood fill over the flat raster.
func LabelComponents(m *Mask) *Labels {
	out := &Labels{H: m.H, W: m.W, IDs: make([]int32, len(m.Bits))}
	var queue []int
	for start, set := range m.Bits {
		if !set || out.IDs[start] != 0 {
			continue
		}
		out.Count++
		id := int32(out.Count)
		out.IDs[start] = id
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			y, x := idx/m.W, idx%m.W
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dy == 0 && dx == 0 {
						continue
					}
					ny, nx := y+dy, x+dx
					if ny < 0 || ny >= m.H || nx < 0 || nx >= m.W {
						continue
					}
					nidx := ny*m.W + nx
					if m.Bits[nidx] && out.IDs[nidx] == 0 {
						out.IDs[nidx] = id
						queue = append(queue, nidx)
					}
				}
			}
		}
	}
	return out
}

// ComponentSizes returns the pixel count of each component, indexed by
// component ID minus one.
func (l *Labels) ComponentSizes() []int {
	sizes := make([]int, l.Count)
	for _, id := range l.IDs {
		if id > 0 {
			sizes[id-1]++
		}
	}
	return sizes
}

// LargestComponent returns the ID and size of the biggest component, or
// (0, 0) when the mask was empty.
func (l *Labels) LargestComponent() (id int32, size int) {
	sizes := l.ComponentSizes()
	for i, s := range sizes {
		if s > size {
			size = s
			id = int32(i + 1)
		}
	}
	return id, size
}

// ComponentMask returns the mask of a single component.
func (l *Labels) ComponentMask(id int32) *Mask {
	m := MustMask(l.H, l.W)
	for i, v := range l.IDs {
		m.Bits[i] = v == id
	}
	return m
}
