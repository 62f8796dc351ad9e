package main

import (
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/magsensor/cmd/magsensor/console"
)

// lastRegister is the chip ID register, the highest documented address.
const lastRegister = 0x0D

var statusCmd = cli.Command{
	Name:  "status",
	Usage: "print the status register flags",
	Action: func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer s.Close(c.Context)
		dev, err := s.device()
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		st, err := dev.Status(commandContext(c))
		if err != nil {
			return console.Exit(1, "error reading status: %s", console.Red(err))
		}
		printStatus(st)
		return nil
	},
}

var dumpCmd = cli.Command{
	Name:  "dump",
	Usage: "print all registers",
	Action: func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer s.Close(c.Context)
		dev, err := s.device()
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		ctx := commandContext(c)
		for reg := byte(0); reg <= lastRegister; reg++ {
			val, err := dev.Register(ctx, reg)
			if err != nil {
				return console.Exit(1, "error reading register: %s", console.Red(err))
			}
			console.Printf("%s %#04x: %#04x %08b\n", console.PictoPin, reg, val, val)
		}
		continuous, standby := dev.ControlBytes()
		console.Infof("control: continuous %#04x, standby %#04x", continuous, standby)
		return nil
	},
}

var standbyCmd = cli.Command{
	Name:  "standby",
	Usage: "put the sensor into standby mode",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
	},
	Action: func(c *cli.Context) error {
		if !c.Bool("yes") {
			answer, err := console.YesOrNo("stop measuring?")
			if err != nil {
				return console.Exit(1, "prompt error: %s", console.Red(err))
			}
			if answer != console.Yes {
				return nil
			}
		}
		s, err := openSession(c)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		// closing the session is what puts the device into standby
		defer s.Close(c.Context)
		if _, err := s.device(); err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		console.Printf("%s standby\n", console.PictoStop)
		return nil
	},
}
