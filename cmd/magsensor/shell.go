package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/magsensor/cmd/magsensor/console"
	"github.com/mklimuk/magsensor/magnetic"
)

var shellCommands = []string{"read", "magnet", "bearing", "temperature", "status", "register", "help", "exit"}

var errShellExit = errors.New("exit")

var shellCmd = cli.Command{
	Name:  "shell",
	Usage: "keep the sensor open and query it interactively",
	Action: func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer s.Close(c.Context)
		sh, err := console.NewShell("magsensor> ", shellCommands...)
		if err != nil {
			return console.Exit(1, "could not start shell: %s", console.Red(err))
		}
		defer func() { _ = sh.Close() }()
		ctx := commandContext(c)
		for {
			args, err := sh.Next()
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return console.Exit(1, "shell error: %s", console.Red(err))
			}
			err = execShell(ctx, s, args)
			if errors.Is(err, errShellExit) {
				return nil
			}
			if err != nil {
				console.Errorf("%s", console.Red(err))
			}
		}
	},
}

func execShell(ctx context.Context, s *session, args []string) error {
	switch args[0] {
	case "read":
		res, err := s.sensor.GetData(ctx)
		if err != nil {
			return err
		}
		console.PrintReading(res)
	case "magnet":
		x, y, z, err := s.sensor.GetMagnet(ctx)
		if err != nil {
			return err
		}
		console.Printf("%s x=%s y=%s z=%s\n", console.PictoMagnet, console.Word(x), console.Word(y), console.Word(z))
	case "bearing":
		b, ok, err := s.sensor.GetBearing(ctx)
		if err != nil {
			return err
		}
		console.PrintBearing(b, ok)
	case "temperature":
		t, err := s.sensor.GetTemperature(ctx)
		if err != nil {
			return err
		}
		console.Printf("%s %s\n", console.PictoThermometer, console.Word(t))
	case "status":
		dev, err := s.device()
		if err != nil {
			return err
		}
		st, err := dev.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(st)
	case "register":
		if len(args) != 2 {
			return fmt.Errorf("usage: register <hex address>")
		}
		reg, err := strconv.ParseUint(args[1], 16, 8)
		if err != nil {
			return fmt.Errorf("could not parse register: %w", err)
		}
		dev, err := s.device()
		if err != nil {
			return err
		}
		val, err := dev.Register(ctx, byte(reg))
		if err != nil {
			return err
		}
		console.Printf("%s %#04x: %#04x (%08b)\n", console.PictoPin, reg, val, val)
	case "help":
		for _, cmd := range shellCommands {
			console.Print(cmd)
		}
	case "exit":
		return errShellExit
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func printStatus(st magnetic.Status) {
	flag := func(set bool) string {
		if set {
			return console.Yellow("yes")
		}
		return console.Green("no")
	}
	console.Printf("data ready: %s\noverflow: %s\ndata lock: %s\n", flag(st.Ready()), flag(st.Overflow()), flag(st.DataLocked()))
}
