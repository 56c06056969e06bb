package haze

import (
	"fmt"
	"runtime"
	"sync"

	"haze-estimator/internal/grid"
)

// DarkChannel computes the dark channel of a pixel grid: the per-pixel
// minimum across the three color channels, then the minimum of that
// field over a patchSize x patchSize window centered on each pixel.
// Windows shrink at the borders rather than wrapping or padding.
//
// The local minimum runs as two separable 1-D sliding-window passes
// (horizontal then vertical), each amortized O(1) per pixel, which is
// numerically identical to the full 2-D window scan.
func DarkChannel(g *grid.PixelGrid, patchSize int) (*grid.ScalarField, error) {
	if patchSize < 1 || patchSize%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPatchSize, patchSize)
	}

	channelMin := ChannelMin(g)
	return MinFilter(channelMin, patchSize), nil
}

// ChannelMin returns the per-pixel minimum across the three channels.
func ChannelMin(g *grid.PixelGrid) *grid.ScalarField {
	out := grid.NewScalarField(g.Width, g.Height)
	for i := range out.Data {
		base := i * 3
		m := g.Pix[base]
		if v := g.Pix[base+1]; v < m {
			m = v
		}
		if v := g.Pix[base+2]; v < m {
			m = v
		}
		out.Data[i] = m
	}
	return out
}

// MinFilter computes the sliding-window minimum of a scalar field over a
// square window of the given odd size, clamped at the borders. Rows of
// each pass are independent and fan out across the available CPUs.
func MinFilter(f *grid.ScalarField, size int) *grid.ScalarField {
	if size <= 1 {
		return f.Clone()
	}
	radius := size / 2

	// Horizontal pass.
	tmp := grid.NewScalarField(f.Width, f.Height)
	parallelRows(f.Height, func(y int) {
		row := f.Data[y*f.Width : (y+1)*f.Width]
		slidingMin(row, tmp.Data[y*f.Width:(y+1)*f.Width], radius)
	})

	// Vertical pass over the horizontal result. Columns are gathered
	// into a scratch slice per worker to keep the inner loop contiguous.
	out := grid.NewScalarField(f.Width, f.Height)
	parallelRows(f.Width, func(x int) {
		col := make([]float64, f.Height)
		res := make([]float64, f.Height)
		for y := 0; y < f.Height; y++ {
			col[y] = tmp.Data[y*f.Width+x]
		}
		slidingMin(col, res, radius)
		for y := 0; y < f.Height; y++ {
			out.Data[y*f.Width+x] = res[y]
		}
	})
	return out
}

// slidingMin writes dst[i] = min(src[max(0,i-r) .. min(n-1,i+r)]) using a
// monotonic index deque; every element enters and leaves the deque once.
func slidingMin(src, dst []float64, radius int) {
	n := len(src)
	deque := make([]int, 0, 2*radius+1)
	next := 0

	for i := 0; i < n; i++ {
		hi := i + radius
		if hi > n-1 {
			hi = n - 1
		}
		for ; next <= hi; next++ {
			for len(deque) > 0 && src[deque[len(deque)-1]] >= src[next] {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, next)
		}
		lo := i - radius
		for len(deque) > 0 && deque[0] < lo {
			deque = deque[1:]
		}
		dst[i] = src[deque[0]]
	}
}

// parallelRows runs fn for every index in [0, n) across NumCPU workers.
func parallelRows(n int, fn func(i int)) {
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
