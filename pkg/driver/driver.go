// Package driver feeds FicTrac messages from a transport through a heading
// rate pipeline and onto an analog output.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/aout"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/message"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/pipeline"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/transport"
)

type Config struct {
	// Suppress the per-frame status block.
	Quiet bool `yaml:"quiet"`
	// Log every skipped message.
	Verbose bool `yaml:"verbose"`
	// Print a summary every N data messages; 0 disables.
	SummaryEvery int `yaml:"summary_every"`
	// Print a liveness line when nothing arrived for this long; 0 disables.
	WatchdogInterval time.Duration `yaml:"watchdog_interval"`
}

func DefaultConfig() Config {
	return Config{
		SummaryEvery:     500,
		WatchdogInterval: 5 * time.Second,
	}
}

// Clock returns monotonic time in seconds.
type Clock func() float64

func MonotonicClock() Clock {
	start := time.Now()
	return func() float64 {
		return time.Since(start).Seconds()
	}
}

type Driver struct {
	cfg Config

	sub     transport.Subscriber
	out     aout.Interface
	pipe    *pipeline.Pipeline
	channel int
	clock   Clock

	// Logf receives all console output.  Replace it to capture or mute.
	Logf func(format string, v ...interface{})

	Stats Stats

	lastMessage time.Time
}

func New(cfg Config, sub transport.Subscriber, out aout.Interface, pipe *pipeline.Pipeline, clock Clock) *Driver {
	return &Driver{
		cfg:     cfg,
		sub:     sub,
		out:     out,
		pipe:    pipe,
		channel: pipe.Config().AoutChannel,
		clock:   clock,
		Logf: func(format string, v ...interface{}) {
			fmt.Printf(format, v...)
		},
	}
}

// Run consumes messages until ctx is cancelled or the transport fails.  The
// pipeline is only ever touched from the calling goroutine.  A background
// reader blocks in Subscriber.Next; closing the subscriber after Run returns
// releases it.
func (d *Driver) Run(ctx context.Context) error {
	payloads := make(chan []byte)
	readErrs := make(chan error, 1)
	go d.loopReadingMessages(ctx, payloads, readErrs)

	var watchdog <-chan time.Time
	if d.cfg.WatchdogInterval > 0 {
		ticker := time.NewTicker(d.cfg.WatchdogInterval)
		defer ticker.Stop()
		watchdog = ticker.C
	}
	d.lastMessage = time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload := <-payloads:
			d.lastMessage = time.Now()
			// Already logged and counted; keep going.
			_ = d.HandleMessage(payload)
		case err := <-readErrs:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "transport failed")
		case <-watchdog:
			if since := time.Since(d.lastMessage); since >= d.cfg.WatchdogInterval {
				d.Logf("DRV: Main loop still running, no message for %v\n", since.Round(time.Second))
			}
		}
	}
}

func (d *Driver) loopReadingMessages(ctx context.Context, payloads chan<- []byte, errs chan<- error) {
	for ctx.Err() == nil {
		payload, err := d.sub.Next(ctx)
		if err != nil {
			errs <- err
			return
		}
		select {
		case payloads <- payload:
		case <-ctx.Done():
			return
		}
	}
}

// HandleMessage decodes one payload and applies it.  Malformed and
// out-of-order messages are counted and skipped without touching the output;
// the returned error says why.
func (d *Driver) HandleMessage(payload []byte) error {
	msg, err := message.Decode(payload)
	if err != nil {
		d.Stats.Malformed++
		if d.cfg.Verbose {
			d.Logf("DRV: Skipping message: %v\n", err)
		}
		return err
	}

	now := d.clock()
	if msg.Type == message.TypeReset {
		d.Stats.Resets++
		out := d.pipe.OnReset(now)
		d.Logf("DRV: Reset at %.3f\n", now)
		return d.setVoltage(out.Voltage)
	}

	out, err := d.pipe.OnData(now, msg.Heading)
	if err != nil {
		d.Stats.Skipped++
		if d.cfg.Verbose {
			d.Logf("DRV: Skipping frame %d: %v\n", msg.Frame, err)
		}
		return err
	}
	d.Stats.Data++
	if d.cfg.SummaryEvery > 0 {
		// The window is cleared by each summary.
		d.Stats.addRate(out.Rate)
	}

	err = d.setVoltage(out.Voltage)

	if !d.cfg.Quiet {
		d.Logf("frame:  %d\ntime:   %1.3f\nrate:   %1.3f\nvolt:   %1.3f\n\n",
			msg.Frame, d.pipe.Elapsed(now), out.Rate, out.Voltage)
	}
	if d.cfg.SummaryEvery > 0 && d.Stats.Data%d.cfg.SummaryEvery == 0 {
		d.Logf("DRV: %s\n", d.Stats.Summary())
	}
	return err
}

func (d *Driver) setVoltage(volts float64) error {
	if err := d.out.SetVoltage(d.channel, volts); err != nil {
		d.Stats.WriteErrors++
		d.Logf("AOUT: Failed to set voltage: %v\n", err)
		return err
	}
	return nil
}

// Shutdown drives the output to 0V.
func (d *Driver) Shutdown() error {
	return d.setVoltage(0)
}
