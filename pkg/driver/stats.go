package driver

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats counts what the driver has done with incoming messages and keeps the
// raw rates seen since the last summary.
type Stats struct {
	Data        int
	Resets      int
	Malformed   int
	Skipped     int
	WriteErrors int

	window []float64
}

func (s *Stats) addRate(r float64) {
	s.window = append(s.window, r)
}

// Summary describes the rates since the last call and clears the window.
func (s *Stats) Summary() string {
	defer func() { s.window = s.window[:0] }()

	summary := fmt.Sprintf("data=%d resets=%d malformed=%d skipped=%d write-errors=%d",
		s.Data, s.Resets, s.Malformed, s.Skipped, s.WriteErrors)
	if len(s.window) == 0 {
		return summary
	}
	mean, std := s.window[0], 0.0
	if len(s.window) > 1 {
		mean, std = stat.MeanStdDev(s.window, nil)
	}
	return fmt.Sprintf("%s rate: n=%d mean=%.3f std=%.3f min=%.3f max=%.3f",
		summary, len(s.window), mean, std, floats.Min(s.window), floats.Max(s.window))
}
