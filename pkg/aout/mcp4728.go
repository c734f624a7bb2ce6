package aout

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/io/i2c"
)

const (
	MCP4728DefaultAddr = 0x60
	MCP4728Channels    = 4

	// Multi-write command: 0 1 0 0 0 DAC1 DAC0 UDAC.  UDAC=0 latches the
	// new value onto the output immediately.
	mcp4728CmdMultiWrite = 0x40

	// Upper nibble of the second byte: VREF=0 (VDD), PD1=PD0=0 (powered),
	// Gain=0 (x1).
	mcp4728ConfigBits = 0x00
)

type i2cPort interface {
	Write(buf []byte) error
	Close() error
}

type MCP4728 struct {
	lock sync.Mutex
	dev  i2cPort

	minVolt, maxVolt float64
}

var _ Interface = (*MCP4728)(nil)

func NewMCP4728(deviceFile string, addr int, minVolt, maxVolt float64) (*MCP4728, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open MCP4728 at %s/0x%x", deviceFile, addr)
	}
	return newMCP4728(dev, minVolt, maxVolt), nil
}

func newMCP4728(dev i2cPort, minVolt, maxVolt float64) *MCP4728 {
	return &MCP4728{
		dev:     dev,
		minVolt: minVolt,
		maxVolt: maxVolt,
	}
}

func (m *MCP4728) SetVoltage(channel int, volts float64) error {
	if channel < 0 || channel >= MCP4728Channels {
		return errors.Wrapf(ErrChannelOutOfRange, "MCP4728 channel %d", channel)
	}
	code := voltsToCode(volts, m.minVolt, m.maxVolt)

	m.lock.Lock()
	defer m.lock.Unlock()
	return m.dev.Write([]byte{
		mcp4728CmdMultiWrite | byte(channel)<<1,
		mcp4728ConfigBits | byte(code>>8)&0x0f,
		byte(code),
	})
}

func (m *MCP4728) Close() error {
	return m.dev.Close()
}
