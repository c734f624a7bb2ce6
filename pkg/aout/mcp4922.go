package aout

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

const (
	MCP4922Channels = 2

	MCP4922ClockFrequency = physic.MegaHertz * 10

	// Command word: A/B BUF GA SHDN D11..D0.
	mcp4922ChannelB = 1 << 15
	mcp4922Gain1x   = 1 << 13
	mcp4922Active   = 1 << 12
)

type spiPort interface {
	Tx(w, r []byte) error
}

type MCP4922 struct {
	lock sync.Mutex
	c    spiPort
	p    spi.PortCloser

	w [2]byte

	minVolt, maxVolt float64
}

var _ Interface = (*MCP4922)(nil)

func NewMCP4922(portName string, minVolt, maxVolt float64) (*MCP4922, error) {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialise periph")
	}

	p, err := spireg.Open(portName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open SPI port %q", portName)
	}

	c, err := p.Connect(MCP4922ClockFrequency, spi.Mode0, 8)
	if err != nil {
		_ = p.Close()
		return nil, errors.Wrap(err, "failed to connect to MCP4922")
	}

	m := newMCP4922(c, minVolt, maxVolt)
	m.p = p
	return m, nil
}

func newMCP4922(c spiPort, minVolt, maxVolt float64) *MCP4922 {
	return &MCP4922{
		c:       c,
		minVolt: minVolt,
		maxVolt: maxVolt,
	}
}

func (m *MCP4922) SetVoltage(channel int, volts float64) error {
	if channel < 0 || channel >= MCP4922Channels {
		return errors.Wrapf(ErrChannelOutOfRange, "MCP4922 channel %d", channel)
	}
	word := uint16(mcp4922Gain1x|mcp4922Active) | voltsToCode(volts, m.minVolt, m.maxVolt)
	if channel == 1 {
		word |= mcp4922ChannelB
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.w[0] = byte(word >> 8)
	m.w[1] = byte(word)
	return m.c.Tx(m.w[:], nil)
}

func (m *MCP4922) Close() error {
	if m.p == nil {
		return nil
	}
	return m.p.Close()
}
