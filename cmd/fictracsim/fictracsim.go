package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/message"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/transport"
)

var CLI struct {
	RedisAddr  string  `help:"Redis server address." default:"localhost:6379"`
	Channel    string  `help:"Channel to publish on." default:"fictrac"`
	Hz         float64 `help:"Frames per second." default:"60"`
	Speed      float64 `help:"Constant turning rate in degrees per second." default:"45"`
	Wobble     float64 `help:"Amplitude of a sinusoidal heading wobble in degrees." default:"0"`
	WobbleHz   float64 `help:"Frequency of the wobble." default:"0.5"`
	ResetEvery int     `help:"Send a reset message every N frames; 0 only sends one at start." default:"0"`
	Frames     int     `help:"Stop after N frames; 0 runs until interrupted." default:"0"`
}

func main() {
	kong.Parse(&CLI, kong.Name("fictracsim"), kong.Description("Publish synthetic FicTrac heading messages to Redis."))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pub, err := transport.NewRedisPublisher(ctx, CLI.RedisAddr, CLI.Channel)
	if err != nil {
		fmt.Println("Failed to connect:", err)
		os.Exit(1)
	}
	defer pub.Close()

	if CLI.Hz <= 0 {
		fmt.Println("--hz must be positive")
		os.Exit(2)
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / CLI.Hz))
	defer ticker.Stop()

	send := func(m message.Message) bool {
		payload, err := message.Encode(m)
		if err != nil {
			fmt.Println("Failed to encode:", err)
			return false
		}
		if _, err := pub.Publish(ctx, payload); err != nil {
			fmt.Println("Failed to publish:", err)
			return false
		}
		return true
	}

	var start time.Time
	for frame := 0; CLI.Frames == 0 || frame < CLI.Frames; frame++ {
		if frame == 0 || (CLI.ResetEvery > 0 && frame%CLI.ResetEvery == 0) {
			fmt.Println("Reset at frame", frame)
			if !send(message.Message{Type: message.TypeReset}) {
				return
			}
			start = time.Now()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		t := time.Since(start).Seconds()
		heading := math.Mod(CLI.Speed*t+CLI.Wobble*math.Sin(2*math.Pi*CLI.WobbleHz*t), 360)
		if heading < 0 {
			heading += 360
		}
		if !send(message.Message{Type: message.TypeData, Frame: int64(frame), Heading: heading}) {
			return
		}
	}
}
