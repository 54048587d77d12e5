package forensics

import (
	"math"
	"math/bits"
	"math/cmplx"
)

// fft transforms a in place. len(a) must be a power of two.
func fft(a []complex128) {
	n := len(a)
	if n < 2 {
		return
	}
	shift := 64 - bits.TrailingZeros(uint(n))
	for i := 0; i < n; i++ {
		j := int(bits.Reverse64(uint64(i)) >> shift)
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
	for size := 2; size <= n; size <<= 1 {
		step := cmplx.Exp(complex(0, -2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < size/2; k++ {
				u := a[start+k]
				v := a[start+k+size/2] * w
				a[start+k] = u + v
				a[start+k+size/2] = u - v
				w *= step
			}
		}
	}
}

// fft2 transforms an n×n matrix in place, rows then columns.
func fft2(m [][]complex128) {
	n := len(m)
	for _, row := range m {
		fft(row)
	}
	col := make([]complex128, n)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			col[y] = m[y][x]
		}
		fft(col)
		for y := 0; y < n; y++ {
			m[y][x] = col[y]
		}
	}
}
