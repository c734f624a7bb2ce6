package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"

	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/aout"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/config"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/driver"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/pipeline"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/transport"
)

var CLI struct {
	Config     string `help:"YAML config file." short:"c" type:"path"`
	WriteInUse bool   `help:"Write the effective config next to --config as <name>-in-use.yaml."`

	Transport    string `help:"Message transport (redis, serial)."`
	RedisAddr    string `help:"Redis server address."`
	Channel      string `help:"Redis channel FicTrac publishes on."`
	SerialDevice string `help:"Serial device for the serial transport."`

	Output       string `help:"Analog output kind (mcp4728, mcp4922, dummy)."`
	OutputDevice string `help:"I2C bus device file or SPI port name of the analog output."`
	DryRun       bool   `help:"Print voltages instead of driving hardware." short:"n"`

	Quiet   bool `help:"Don't print the per-frame status." short:"q"`
	Verbose bool `help:"Log skipped messages." short:"v"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("aoutdemo"),
		kong.Description("Drive an analog output proportional to the rate of change of FicTrac's heading."),
	)

	fmt.Println("---- FicTrac aout ----")

	cfg, err := loadConfig()
	if err != nil {
		fmt.Println("Bad config:", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Println("Exiting:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if CLI.Config != "" {
		var err error
		cfg, err = config.Load(CLI.Config)
		if err != nil {
			return cfg, err
		}
	}

	if CLI.Transport != "" {
		cfg.Transport.Kind = CLI.Transport
	}
	if CLI.RedisAddr != "" {
		cfg.Transport.RedisAddr = CLI.RedisAddr
	}
	if CLI.Channel != "" {
		cfg.Transport.Channel = CLI.Channel
	}
	if CLI.SerialDevice != "" {
		cfg.Transport.SerialDevice = CLI.SerialDevice
	}
	if CLI.Output != "" {
		cfg.Output.Kind = CLI.Output
	}
	if CLI.OutputDevice != "" {
		cfg.Output.Device = CLI.OutputDevice
	}
	if CLI.DryRun {
		cfg.Output.Kind = aout.KindDummy
	}
	cfg.Status.Quiet = cfg.Status.Quiet || CLI.Quiet
	cfg.Status.Verbose = cfg.Status.Verbose || CLI.Verbose

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if CLI.WriteInUse && CLI.Config != "" {
		if _, err := config.WriteInUse(cfg, CLI.Config); err != nil {
			fmt.Println("Failed to write config in use:", err)
		}
	}
	return cfg, nil
}

func run(cfg config.Config) error {
	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hook Ctrl-C etc.
	registerSignalHandlers(cancel)

	fmt.Printf("Attaching %s analog output (channel %d, timeout %v)\n",
		cfg.Output.Kind, cfg.Pipeline.AoutChannel, cfg.Output.AttachTimeout)
	out, err := aout.Attach(ctx, func() (aout.Interface, error) {
		return aout.Open(cfg.Output)
	}, cfg.Pipeline.AoutChannel, cfg.Output.AttachTimeout)
	if err != nil {
		return errors.Wrap(err, "analog output")
	}
	defer func() {
		fmt.Println("Closing analog output")
		_ = out.Close()
	}()

	fmt.Printf("Subscribing via %s\n", cfg.Transport.Kind)
	sub, err := transport.Subscribe(ctx, cfg.Transport)
	if err != nil {
		_ = out.SetVoltage(cfg.Pipeline.AoutChannel, 0)
		return errors.Wrap(err, "transport")
	}

	clock := driver.MonotonicClock()
	pipe, err := pipeline.New(cfg.Pipeline, clock())
	if err != nil {
		_ = sub.Close()
		return err
	}

	d := driver.New(cfg.Status, sub, out, pipe, clock)
	fmt.Println("Waiting for messages...")
	err = d.Run(ctx)

	fmt.Println("Zeroing output for shut down")
	_ = d.Shutdown()
	_ = sub.Close()
	fmt.Println("Final:", d.Stats.Summary())

	if err != nil && errors.Cause(err) != context.Canceled {
		return err
	}
	return nil
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}
