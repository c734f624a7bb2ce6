package lowpass

import "math"

// Filter is a first order low-pass filter for irregularly spaced samples.
// The smoothing coefficient is recomputed from the elapsed time on every
// update so the filter tracks a continuous-time filter with the given cutoff.
type Filter struct {
	cutoffFreq float64

	timePrev  float64
	valueFilt float64
}

func New(t, cutoffFreq, valueInit float64) *Filter {
	f := &Filter{cutoffFreq: cutoffFreq}
	f.Reset(t, valueInit)
	return f
}

func (f *Filter) Reset(t, valueInit float64) {
	f.timePrev = t
	f.valueFilt = valueInit
}

// Alpha returns the smoothing coefficient for a step of dt seconds.  A
// non-positive step gives 0 (hold).
func (f *Filter) Alpha(dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	tmp := 2.0 * math.Pi * f.cutoffFreq * dt
	return tmp / (tmp + 1.0)
}

func (f *Filter) Update(t, value float64) float64 {
	dt := t - f.timePrev
	if dt <= 0 {
		// Never move time backwards; an equal timestamp is a no-op.
		return f.valueFilt
	}
	f.timePrev = t
	alpha := f.Alpha(dt)
	f.valueFilt = (1.0-alpha)*f.valueFilt + alpha*value
	return f.valueFilt
}

func (f *Filter) Value() float64 {
	return f.valueFilt
}

func (f *Filter) CutoffFreq() float64 {
	return f.cutoffFreq
}
