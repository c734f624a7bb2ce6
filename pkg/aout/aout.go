// Package aout drives analog voltage outputs.
//
// Two 12-bit DACs are supported: the MCP4728 (four channels, I2C) and the
// MCP4922 (two channels, SPI).  Both are expected to sit in front of an
// amplifier stage that maps the DAC's code range onto
// [DeviceMinVolt, DeviceMaxVolt], so callers work in output volts.
package aout

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
)

const (
	KindMCP4728 = "mcp4728"
	KindMCP4922 = "mcp4922"
	KindDummy   = "dummy"

	dacBits = 12
	dacMax  = 1<<dacBits - 1

	attachRetryInterval = 100 * time.Millisecond
)

var (
	ErrAttachTimeout       = errors.New("timed out waiting for analog output to attach")
	ErrChannelOutOfRange   = errors.New("analog output channel out of range")
	ErrUnknownKind         = errors.New("unknown analog output kind")
	ErrInvalidVoltageRange = errors.New("invalid device voltage range")
)

type Interface interface {
	SetVoltage(channel int, volts float64) error
	Close() error
}

type Config struct {
	Kind string `yaml:"kind"`

	// I2C bus device file (/dev/i2c-1) or periph SPI port name (/dev/spidev0.0).
	Device string `yaml:"device"`
	// I2C address; ignored for SPI devices.
	Address int `yaml:"address"`

	// Output voltage produced at DAC code 0 and at full scale.
	DeviceMinVolt float64 `yaml:"device_min_volt"`
	DeviceMaxVolt float64 `yaml:"device_max_volt"`

	AttachTimeout time.Duration `yaml:"attach_timeout"`
}

func DefaultConfig() Config {
	return Config{
		Kind:          KindMCP4728,
		Device:        "/dev/i2c-1",
		Address:       MCP4728DefaultAddr,
		DeviceMinVolt: -10,
		DeviceMaxVolt: 10,
		AttachTimeout: 5 * time.Second,
	}
}

func (c Config) Validate() error {
	switch c.Kind {
	case KindMCP4728, KindMCP4922, KindDummy:
	default:
		return errors.Wrapf(ErrUnknownKind, "%q", c.Kind)
	}
	if !(c.DeviceMinVolt < c.DeviceMaxVolt) {
		return errors.Wrapf(ErrInvalidVoltageRange, "%v..%v", c.DeviceMinVolt, c.DeviceMaxVolt)
	}
	return nil
}

// Open opens the device described by cfg without retrying.
func Open(cfg Config) (Interface, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case KindMCP4728:
		return NewMCP4728(cfg.Device, cfg.Address, cfg.DeviceMinVolt, cfg.DeviceMaxVolt)
	case KindMCP4922:
		return NewMCP4922(cfg.Device, cfg.DeviceMinVolt, cfg.DeviceMaxVolt)
	}
	return Dummy(), nil
}

type Opener func() (Interface, error)

// Attach keeps trying to open a device until it succeeds or timeout expires,
// then drives the given channel to 0V.
func Attach(ctx context.Context, open Opener, channel int, timeout time.Duration) (Interface, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	firstLog := true
	for {
		dev, err := open()
		if err == nil {
			if err := dev.SetVoltage(channel, 0); err != nil {
				_ = dev.Close()
				return nil, errors.Wrap(err, "failed to zero output after attach")
			}
			return dev, nil
		}
		if firstLog {
			fmt.Printf("AOUT: Waiting for analog output: %v.\n", err)
			firstLog = false
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, errors.Wrapf(ErrAttachTimeout, "after %v (last error: %v)", timeout, err)
			}
			return nil, ctx.Err()
		case <-time.After(attachRetryInterval):
		}
	}
}

// voltsToCode maps volts linearly onto the DAC code range, clamping to the
// ends of the range.
func voltsToCode(volts, minVolt, maxVolt float64) uint16 {
	if math.IsNaN(volts) || volts <= minVolt {
		return 0
	}
	if volts >= maxVolt {
		return dacMax
	}
	return uint16(math.Round((volts - minVolt) / (maxVolt - minVolt) * dacMax))
}

// codeToVolts is the inverse of voltsToCode.
func codeToVolts(code uint16, minVolt, maxVolt float64) float64 {
	return minVolt + float64(code)/dacMax*(maxVolt-minVolt)
}
