package aout

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeI2C struct {
	writes [][]byte
	closed bool
}

func (f *fakeI2C) Write(buf []byte) error {
	f.writes = append(f.writes, append([]byte(nil), buf...))
	return nil
}

func (f *fakeI2C) Close() error {
	f.closed = true
	return nil
}

type fakeSPI struct {
	txs [][]byte
}

func (f *fakeSPI) Tx(w, r []byte) error {
	f.txs = append(f.txs, append([]byte(nil), w...))
	return nil
}

type recordingOutput struct {
	channel int
	volts   []float64
	closed  bool
}

func (r *recordingOutput) SetVoltage(channel int, volts float64) error {
	r.channel = channel
	r.volts = append(r.volts, volts)
	return nil
}

func (r *recordingOutput) Close() error {
	r.closed = true
	return nil
}

func TestVoltsToCode(t *testing.T) {
	assert.Equal(t, uint16(0), voltsToCode(-10, -10, 10))
	assert.Equal(t, uint16(0), voltsToCode(-20, -10, 10))
	assert.Equal(t, uint16(4095), voltsToCode(10, -10, 10))
	assert.Equal(t, uint16(4095), voltsToCode(11, -10, 10))
	assert.Equal(t, uint16(2048), voltsToCode(0, -10, 10))
	assert.Equal(t, uint16(2048), voltsToCode(2.5, 0, 5))

	for _, v := range []float64{-9.3, -1, 0, 0.5, 7.7} {
		assert.InDelta(t, v, codeToVolts(voltsToCode(v, -10, 10), -10, 10), 20.0/4095)
	}
}

func TestMCP4728SetVoltage(t *testing.T) {
	port := &fakeI2C{}
	dac := newMCP4728(port, -10, 10)

	require.NoError(t, dac.SetVoltage(0, 10))
	require.NoError(t, dac.SetVoltage(2, 0))
	require.NoError(t, dac.SetVoltage(3, -10))

	assert.Equal(t, [][]byte{
		{0x40, 0x0f, 0xff},
		{0x44, 0x08, 0x00},
		{0x46, 0x00, 0x00},
	}, port.writes)

	err := dac.SetVoltage(4, 1)
	assert.Equal(t, ErrChannelOutOfRange, errors.Cause(err))
	assert.Len(t, port.writes, 3)

	require.NoError(t, dac.Close())
	assert.True(t, port.closed)
}

func TestMCP4922SetVoltage(t *testing.T) {
	port := &fakeSPI{}
	dac := newMCP4922(port, 0, 5)

	require.NoError(t, dac.SetVoltage(0, 5))
	require.NoError(t, dac.SetVoltage(1, 0))

	assert.Equal(t, [][]byte{
		{0x3f, 0xff},
		{0xb0, 0x00},
	}, port.txs)

	err := dac.SetVoltage(2, 1)
	assert.Equal(t, ErrChannelOutOfRange, errors.Cause(err))
	assert.NoError(t, dac.Close())
}

func TestAttachRetriesThenZeroes(t *testing.T) {
	out := &recordingOutput{}
	attempts := 0
	open := func() (Interface, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("not plugged in")
		}
		return out, nil
	}

	dev, err := Attach(context.Background(), open, 2, time.Second)
	require.NoError(t, err)
	assert.Equal(t, out, dev)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, out.channel)
	assert.Equal(t, []float64{0}, out.volts)
}

func TestAttachTimeout(t *testing.T) {
	open := func() (Interface, error) {
		return nil, errors.New("not plugged in")
	}
	start := time.Now()
	_, err := Attach(context.Background(), open, 0, 250*time.Millisecond)
	assert.Equal(t, ErrAttachTimeout, errors.Cause(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAttachCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	open := func() (Interface, error) {
		return nil, errors.New("not plugged in")
	}
	_, err := Attach(ctx, open, 0, time.Minute)
	assert.Equal(t, context.Canceled, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Kind = "phidget"
	assert.Equal(t, ErrUnknownKind, errors.Cause(cfg.Validate()))

	cfg = DefaultConfig()
	cfg.DeviceMinVolt = 10
	assert.Equal(t, ErrInvalidVoltageRange, errors.Cause(cfg.Validate()))
}

func TestOpenDummy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = KindDummy
	dev, err := Open(cfg)
	require.NoError(t, err)
	assert.NoError(t, dev.SetVoltage(0, 1.5))
	assert.NoError(t, dev.Close())
}
