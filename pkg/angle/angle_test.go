package angle

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceDegrees(t *testing.T) {
	expectDistance(t, 0, 0, 0)
	expectDistance(t, 0, 90, 90)
	expectDistance(t, 90, 0, -90)
	expectDistance(t, 350, 10, 20)
	expectDistance(t, 10, 350, -20)
	expectDistance(t, 359, 1, 2)
	expectDistance(t, 1, 359, -2)
	expectDistance(t, 0, 360, 0)
	expectDistance(t, 720, 1, 1)
	expectDistance(t, -10, 10, 20)
	expectDistance(t, -370, 10, 20)
	expectDistance(t, 0, 180, 180)
	expectDistance(t, 0, 181, -179)
	expectDistance(t, 0, -181, 179)
}

func expectDistance(t *testing.T, a0, a1, expected float64) {
	t.Helper()
	d, err := Distance(a0, a1, Degrees)
	require.NoError(t, err)
	if math.Abs(d-expected) > 1e-9 {
		t.Errorf("Distance(%f, %f) = %f, expected %f", a0, a1, d, expected)
	}
}

func TestDistanceRadians(t *testing.T) {
	d, err := Distance(0.1, 2*math.Pi-0.1, Radians)
	require.NoError(t, err)
	assert.InDelta(t, -0.2, d, 1e-12)

	d, err = Distance(-math.Pi/2, math.Pi/2+0.1, Radians)
	require.NoError(t, err)
	assert.InDelta(t, -math.Pi+0.1, d, 1e-12)
}

func TestDistanceAntisymmetricAndBounded(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		a := r.Float64()*2000 - 1000
		b := r.Float64()*2000 - 1000
		ab, err := Distance(a, b, Degrees)
		require.NoError(t, err)
		ba, err := Distance(b, a, Degrees)
		require.NoError(t, err)
		if ab != -ba {
			t.Fatalf("Distance(%f, %f) = %f but Distance(%f, %f) = %f", a, b, ab, b, a, ba)
		}
		if math.Abs(ab) > 180 {
			t.Fatalf("Distance(%f, %f) = %f, magnitude over 180", a, b, ab)
		}
	}
}

func TestDistanceInvalidUnit(t *testing.T) {
	_, err := Distance(0, 1, Unit(7))
	require.Error(t, err)
	assert.Equal(t, ErrInvalidUnit, errors.Cause(err))
}

func TestDistanceNonFinite(t *testing.T) {
	for _, c := range []struct {
		a0, a1 float64
	}{
		{math.Inf(1), 10},
		{10, math.Inf(-1)},
		{math.NaN(), 0},
		{0, math.NaN()},
	} {
		for _, unit := range []Unit{Degrees, Radians} {
			_, err := Distance(c.a0, c.a1, unit)
			assert.Equal(t, ErrNonFinite, errors.Cause(err), "Distance(%v, %v, %v)", c.a0, c.a1, unit)
		}
	}
	assert.True(t, IsFinite(-1e308))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.False(t, IsFinite(math.NaN()))
}

func TestParseUnit(t *testing.T) {
	for s, expected := range map[string]Unit{
		"deg":      Degrees,
		"Degrees":  Degrees,
		"":         Degrees,
		"rad":      Radians,
		" RADIANS": Radians,
	} {
		u, err := ParseUnit(s)
		require.NoError(t, err, s)
		assert.Equal(t, expected, u, s)
	}

	_, err := ParseUnit("grad")
	assert.Equal(t, ErrInvalidUnit, errors.Cause(err))
}
