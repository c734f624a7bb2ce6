package lowpass

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlpha(t *testing.T) {
	f := New(0, 1.0, 0)
	assert.InDelta(t, 0.3859, f.Alpha(0.1), 1e-4)
	assert.Equal(t, 0.0, f.Alpha(0))
	assert.Equal(t, 0.0, f.Alpha(-1))

	// Alpha approaches 1 as the step grows.
	assert.Greater(t, f.Alpha(1000), 0.999)
}

func TestUpdateFirstStep(t *testing.T) {
	f := New(0, 1.0, 0)
	v := f.Update(0.1, 100)
	expected := 100 * (2 * math.Pi * 0.1) / (2*math.Pi*0.1 + 1)
	assert.InDelta(t, expected, v, 1e-9)
	assert.InDelta(t, 38.59, v, 0.01)
	assert.Equal(t, v, f.Value())
}

func TestConvergesToConstantInput(t *testing.T) {
	f := New(0, 0.5, 0)
	var v float64
	for i := 1; i <= 500; i++ {
		v = f.Update(float64(i)*0.02, 42)
	}
	assert.InDelta(t, 42, v, 1e-6)
}

func TestZeroElapsedHoldsValue(t *testing.T) {
	f := New(0, 1.0, 0)
	v := f.Update(1, 10)

	assert.Equal(t, v, f.Update(1, 1000))
	assert.Equal(t, v, f.Update(1, -1000))

	// An older timestamp is ignored and does not rewind the filter's clock.
	assert.Equal(t, v, f.Update(0.5, 1000))
	next := f.Update(1.1, 10)
	expectedAlpha := f.Alpha(0.1)
	assert.InDelta(t, (1-expectedAlpha)*v+expectedAlpha*10, next, 1e-9)
}

func TestReset(t *testing.T) {
	f := New(0, 1.0, 0)
	f.Update(1, 50)
	f.Reset(5, 3)
	assert.Equal(t, 3.0, f.Value())
	assert.Equal(t, 3.0, f.Update(5, 99))
}

func TestZeroCutoffNeverMoves(t *testing.T) {
	f := New(0, 0, 7)
	assert.Equal(t, 7.0, f.Update(1, 100))
}
