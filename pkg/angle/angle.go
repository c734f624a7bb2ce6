package angle

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Unit is the unit an angle is measured in.
type Unit int

const (
	Degrees Unit = iota
	Radians
)

var (
	ErrInvalidUnit = errors.New("invalid angle unit")
	ErrNonFinite   = errors.New("angle is not finite")
)

// ParseUnit accepts "deg"/"degrees" and "rad"/"radians", case insensitive.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deg", "degrees", "":
		return Degrees, nil
	case "rad", "radians":
		return Radians, nil
	}
	return 0, errors.Wrapf(ErrInvalidUnit, "%q", s)
}

func (u Unit) String() string {
	switch u {
	case Degrees:
		return "deg"
	case Radians:
		return "rad"
	}
	return "unknown"
}

// Modulus returns the size of a full turn in this unit.
func (u Unit) Modulus() (float64, error) {
	switch u {
	case Degrees:
		return 360.0, nil
	case Radians:
		return 2.0 * math.Pi, nil
	}
	return 0, errors.Wrapf(ErrInvalidUnit, "unit %d", int(u))
}

func (u *Unit) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseUnit(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func (u Unit) MarshalYAML() (interface{}, error) {
	return u.String(), nil
}

// Distance returns the signed shortest angular displacement from angle0 to
// angle1.  Both angles are first reduced mod a full turn; the result is in
// [-turn/2, turn/2].  Infinite or NaN angles have no position on the circle
// and return ErrNonFinite.
func Distance(angle0, angle1 float64, unit Unit) (float64, error) {
	modulus, err := unit.Modulus()
	if err != nil {
		return 0, err
	}
	if !IsFinite(angle0) || !IsFinite(angle1) {
		return 0, errors.Wrapf(ErrNonFinite, "distance from %v to %v", angle0, angle1)
	}
	d := reduce(angle1, modulus) - reduce(angle0, modulus)
	if d > 0.5*modulus {
		d -= modulus
	}
	if d < -0.5*modulus {
		d += modulus
	}
	return d, nil
}

// reduce maps a into [0, modulus).  math.Mod keeps the sign of a so negative
// remainders need shifting up.
func reduce(a, modulus float64) float64 {
	r := math.Mod(a, modulus)
	if r < 0 {
		r += modulus
	}
	if r >= modulus {
		r -= modulus
	}
	return r
}

func IsFinite(a float64) bool {
	return !math.IsNaN(a) && !math.IsInf(a, 0)
}
