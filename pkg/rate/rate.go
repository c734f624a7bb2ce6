package rate

import (
	"github.com/pkg/errors"

	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/angle"
)

// ErrNonPositiveElapsed is returned by Update when a sample's timestamp is not
// strictly after the previous one.  The sample is dropped and the estimator
// state is left as it was.
var ErrNonPositiveElapsed = errors.New("sample time not after previous sample")

// Estimator turns a stream of (time, angle) samples into an angular rate in
// units per second, using the shortest angular distance between samples.
type Estimator struct {
	unit angle.Unit

	timePrev  float64
	valuePrev float64
	rate      float64
}

func New(unit angle.Unit, t, valueInit float64) *Estimator {
	e := &Estimator{unit: unit}
	e.Reset(t, valueInit)
	return e
}

func (e *Estimator) Reset(t, valueInit float64) {
	e.rate = 0
	e.timePrev = t
	e.valuePrev = valueInit
}

// Update measures the rate from the previous sample to (t, value).  Out of
// order samples and infinite or NaN values leave the estimator unchanged.
func (e *Estimator) Update(t, value float64) (float64, error) {
	if !angle.IsFinite(value) {
		return 0, errors.Wrapf(angle.ErrNonFinite, "t=%f value=%v", t, value)
	}
	dt := t - e.timePrev
	if !(dt > 0) {
		return 0, errors.Wrapf(ErrNonPositiveElapsed, "t=%f previous=%f", t, e.timePrev)
	}
	d, err := angle.Distance(e.valuePrev, value, e.unit)
	if err != nil {
		return 0, err
	}
	e.rate = d / dt
	e.timePrev = t
	e.valuePrev = value
	return e.rate, nil
}

// Rate returns the most recently computed rate (0 after a reset).
func (e *Estimator) Rate() float64 {
	return e.rate
}

func (e *Estimator) TimePrev() float64 {
	return e.timePrev
}
