// Package transport delivers raw FicTrac message payloads.
package transport

import (
	"context"

	"github.com/pkg/errors"
)

const (
	KindRedis  = "redis"
	KindSerial = "serial"

	DefaultRedisAddr    = "localhost:6379"
	DefaultChannel      = "fictrac"
	DefaultSerialBaud   = 115200
	DefaultSerialDevice = "/dev/ttyACM0"
)

var ErrUnknownKind = errors.New("unknown transport kind")

// Subscriber yields one message payload per call to Next, in arrival order.
// Next blocks until a payload is available.  Close unblocks a pending Next.
type Subscriber interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

type Config struct {
	Kind string `yaml:"kind"`

	RedisAddr string `yaml:"redis_addr"`
	Channel   string `yaml:"channel"`

	SerialDevice string `yaml:"serial_device"`
	SerialBaud   int    `yaml:"serial_baud"`
}

func DefaultConfig() Config {
	return Config{
		Kind:         KindRedis,
		RedisAddr:    DefaultRedisAddr,
		Channel:      DefaultChannel,
		SerialDevice: DefaultSerialDevice,
		SerialBaud:   DefaultSerialBaud,
	}
}

func (c Config) Validate() error {
	switch c.Kind {
	case KindRedis:
		if c.RedisAddr == "" || c.Channel == "" {
			return errors.New("redis transport needs an address and a channel")
		}
	case KindSerial:
		if c.SerialDevice == "" || c.SerialBaud <= 0 {
			return errors.New("serial transport needs a device and a baud rate")
		}
	default:
		return errors.Wrapf(ErrUnknownKind, "%q", c.Kind)
	}
	return nil
}

// Subscribe connects to the configured transport.  For Redis it returns only
// once the subscription is confirmed by the server.
func Subscribe(ctx context.Context, cfg Config) (Subscriber, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Kind == KindSerial {
		return OpenSerial(cfg.SerialDevice, cfg.SerialBaud)
	}
	return NewRedisSubscriber(ctx, cfg.RedisAddr, cfg.Channel)
}
