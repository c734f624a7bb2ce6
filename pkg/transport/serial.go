package transport

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// SerialSubscriber reads newline-delimited JSON messages from a serial
// bridge.  Blank lines are skipped.
type SerialSubscriber struct {
	port   io.ReadCloser
	reader *bufio.Reader
}

var _ Subscriber = (*SerialSubscriber)(nil)

func OpenSerial(device string, baud int) (*SerialSubscriber, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open serial port %s", device)
	}
	return NewSerialSubscriber(port), nil
}

func NewSerialSubscriber(port io.ReadCloser) *SerialSubscriber {
	return &SerialSubscriber{
		port:   port,
		reader: bufio.NewReader(port),
	}
}

func (s *SerialSubscriber) Next(ctx context.Context) ([]byte, error) {
	for ctx.Err() == nil {
		line, err := s.reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			// A final line without a newline is still a message.
			return line, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "serial read failed")
		}
	}
	return nil, ctx.Err()
}

func (s *SerialSubscriber) Close() error {
	return s.port.Close()
}
