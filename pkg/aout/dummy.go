package aout

import "fmt"

func Dummy() Interface {
	return &dummyOutput{}
}

type dummyOutput struct{}

func (*dummyOutput) SetVoltage(channel int, volts float64) error {
	fmt.Printf("DAOUT: SetVoltage channel=%v volts=%.3f\n", channel, volts)
	return nil
}

func (*dummyOutput) Close() error {
	fmt.Println("DAOUT: Close")
	return nil
}
