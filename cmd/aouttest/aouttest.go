package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"

	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/aout"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/config"
)

var CLI struct {
	Config string `help:"YAML config file to take the output section from." short:"c" type:"path"`
	Output string `help:"Analog output kind (mcp4728, mcp4922, dummy)."`
	Device string `help:"I2C bus device file or SPI port name."`
}

func main() {
	kong.Parse(&CLI, kong.Name("aouttest"), kong.Description("Interactively set analog output voltages."))

	cfg := config.Default()
	if CLI.Config != "" {
		var err error
		cfg, err = config.Load(CLI.Config)
		if err != nil {
			fmt.Println("Failed to load config", err)
			return
		}
	}
	if CLI.Output != "" {
		cfg.Output.Kind = CLI.Output
	}
	if CLI.Device != "" {
		cfg.Output.Device = CLI.Device
	}

	dev, err := aout.Open(cfg.Output)
	if err != nil {
		fmt.Println("Failed to open analog output", err)
		return
	}
	defer dev.Close()

	fmt.Printf(
		`Output %s, range %.2fV..%.2fV
Commands:
    v <n> <volts>                  # Set channel n to volts
    s <n> <from> <to> <seconds>    # Sweep channel n linearly
    z <n>                          # Zero channel n
    q                              # Quit
`, cfg.Output.Kind, cfg.Output.DeviceMinVolt, cfg.Output.DeviceMaxVolt)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nFailed to read stdin: ", err)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "q":
			return
		case "z", "v", "s":
			args, err := parseFloats(parts[1:])
			if err != nil {
				fmt.Println(err)
				continue
			}
			if len(args) < 1 {
				fmt.Println("Not enough parameters")
				continue
			}
			n := int(args[0])
			switch {
			case parts[0] == "z":
				err = dev.SetVoltage(n, 0)
			case parts[0] == "v" && len(args) == 2:
				fmt.Printf("Setting channel %d to %.3fV\n", n, args[1])
				err = dev.SetVoltage(n, args[1])
			case parts[0] == "s" && len(args) == 4:
				err = sweep(dev, n, args[1], args[2], time.Duration(args[3]*float64(time.Second)))
			default:
				fmt.Println("Wrong number of parameters")
				continue
			}
			if err != nil {
				fmt.Println("Failed to write to analog output: ", err)
			}
		default:
			fmt.Println("Unknown command", parts[0])
		}
	}
}

func parseFloats(parts []string) ([]float64, error) {
	var out []float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errors.Errorf("expected number, not %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func sweep(dev aout.Interface, channel int, from, to float64, d time.Duration) error {
	const step = 20 * time.Millisecond
	start := time.Now()
	ticker := time.NewTicker(step)
	defer ticker.Stop()
	for {
		if d <= 0 || time.Since(start) >= d {
			return dev.SetVoltage(channel, to)
		}
		frac := float64(time.Since(start)) / float64(d)
		if err := dev.SetVoltage(channel, from+frac*(to-from)); err != nil {
			return err
		}
		<-ticker.C
	}
}
