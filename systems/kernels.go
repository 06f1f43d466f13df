package systems

import "math"

// Kernels evaluates the smoothing kernels for a fixed radius h. All kernels
// are zero for r >= h.
type Kernels struct {
	h          float32
	hSq        float32
	volume     float32 // pi*h^4/6, normalises the density kernel
	derivScale float32 // 12/(pi*h^4)
}

// NewKernels precomputes the normalisation constants for radius h.
func NewKernels(h float32) Kernels {
	h4 := float64(h) * float64(h) * float64(h) * float64(h)
	return Kernels{
		h:          h,
		hSq:        h * h,
		volume:     float32(math.Pi * h4 / 6),
		derivScale: float32(12 / (math.Pi * h4)),
	}
}

// Density is W(r) = (h-r)^2 / V.
func (k Kernels) Density(r float32) float32 {
	if r >= k.h {
		return 0
	}
	d := k.h - r
	return d * d / k.volume
}

// DensityDerivative is dW/dr = (r-h) * 12/(pi*h^4). Negative inside h.
func (k Kernels) DensityDerivative(r float32) float32 {
	if r >= k.h {
		return 0
	}
	return (r - k.h) * k.derivScale
}

// Viscosity is Wv(r) = (h^2-r^2)^3, unnormalised.
func (k Kernels) Viscosity(r float32) float32 {
	if r >= k.h {
		return 0
	}
	v := k.hSq - r*r
	return v * v * v
}
