package pipeline

import (
	"math"

	"github.com/pkg/errors"

	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/angle"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/lowpass"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/rate"
)

var ErrInvalidConfig = errors.New("invalid pipeline config")

// Config is fixed for the lifetime of a Pipeline.
type Config struct {
	// Volts per unit/second of filtered heading rate.
	RateToVoltConst float64 `yaml:"rate_to_volt_const"`

	AoutChannel int     `yaml:"aout_channel"`
	AoutMaxVolt float64 `yaml:"aout_max_volt"`
	AoutMinVolt float64 `yaml:"aout_min_volt"`

	// Cutoff frequency of the rate low-pass filter in Hz.
	LowpassCutoff float64 `yaml:"lowpass_cutoff"`

	// Unit of the incoming heading values.
	Unit angle.Unit `yaml:"unit"`
}

func DefaultConfig() Config {
	return Config{
		RateToVoltConst: 0.01,
		AoutChannel:     0,
		AoutMaxVolt:     5.0,
		AoutMinVolt:     -5.0,
		LowpassCutoff:   0.5,
		Unit:            angle.Degrees,
	}
}

func (c Config) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"rate_to_volt_const", c.RateToVoltConst},
		{"aout_min_volt", c.AoutMinVolt},
		{"aout_max_volt", c.AoutMaxVolt},
		{"lowpass_cutoff", c.LowpassCutoff},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errors.Wrapf(ErrInvalidConfig, "%s %v is not finite", f.name, f.value)
		}
	}
	if c.AoutMinVolt > c.AoutMaxVolt {
		return errors.Wrapf(ErrInvalidConfig, "aout_min_volt %v > aout_max_volt %v", c.AoutMinVolt, c.AoutMaxVolt)
	}
	if c.AoutChannel < 0 {
		return errors.Wrapf(ErrInvalidConfig, "aout_channel %d < 0", c.AoutChannel)
	}
	if c.LowpassCutoff < 0 {
		return errors.Wrapf(ErrInvalidConfig, "lowpass_cutoff %v", c.LowpassCutoff)
	}
	if _, err := c.Unit.Modulus(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

// Output is the result of feeding one event through the pipeline.
type Output struct {
	Rate         float64
	FilteredRate float64
	Voltage      float64
}

// Pipeline estimates heading rate, smooths it and maps it to an output
// voltage.  Not safe for concurrent use.
type Pipeline struct {
	cfg Config

	rate   *rate.Estimator
	filter *lowpass.Filter

	resetTime float64
}

func New(cfg Config, t0 float64) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       cfg,
		rate:      rate.New(cfg.Unit, t0, 0),
		filter:    lowpass.New(t0, cfg.LowpassCutoff, 0),
		resetTime: t0,
	}, nil
}

// OnReset re-baselines both the rate estimator and the filter at t.  The
// returned Output always commands 0V.
func (p *Pipeline) OnReset(t float64) Output {
	p.rate.Reset(t, 0)
	p.filter.Reset(t, 0)
	p.resetTime = t
	return Output{}
}

// OnData feeds a heading sample taken at t through the pipeline.  Samples
// that are not strictly later than the previous one return an error wrapping
// rate.ErrNonPositiveElapsed and leave the pipeline unchanged, as do infinite
// or NaN headings (angle.ErrNonFinite).
func (p *Pipeline) OnData(t, heading float64) (Output, error) {
	r, err := p.rate.Update(t, heading)
	if err != nil {
		return Output{}, err
	}
	filtered := p.filter.Update(t, r)
	return Output{
		Rate:         r,
		FilteredRate: filtered,
		Voltage:      p.Voltage(filtered),
	}, nil
}

// Voltage maps a filtered rate to a clamped output voltage.
func (p *Pipeline) Voltage(filteredRate float64) float64 {
	return Clamp(p.cfg.RateToVoltConst*filteredRate, p.cfg.AoutMinVolt, p.cfg.AoutMaxVolt)
}

func (p *Pipeline) Config() Config {
	return p.cfg
}

func (p *Pipeline) ResetTime() float64 {
	return p.resetTime
}

// Elapsed returns the time since the last reset (or construction).
func (p *Pipeline) Elapsed(t float64) float64 {
	return t - p.resetTime
}

// Clamp limits x to [lo, hi].  NaN is treated as 0 so the result is always
// inside the bounds.
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		x = 0
	}
	return math.Max(math.Min(x, hi), lo)
}
