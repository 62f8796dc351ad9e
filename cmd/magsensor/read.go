package main

import (
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/magsensor/cmd/magsensor/console"
	"github.com/mklimuk/magsensor/magnetic"
)

type readingOutput struct {
	X           *int16   `yaml:"x"`
	Y           *int16   `yaml:"y"`
	Z           *int16   `yaml:"z"`
	Temperature *int16   `yaml:"temperature"`
	Bearing     *float64 `yaml:"bearing"`
}

func optional(w magnetic.Word) *int16 {
	if !w.Valid {
		return nil
	}
	v := w.Value
	return &v
}

var readCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Usage:   "read axes, temperature and bearing",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "yaml", Usage: "print the reading as YAML"},
	},
	Action: func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer s.Close(c.Context)
		res, err := s.sensor.GetData(commandContext(c))
		if err != nil {
			return console.Exit(1, "error getting magnetometer read: %s", console.Red(err))
		}
		if c.Bool("yaml") {
			out := readingOutput{X: optional(res.X), Y: optional(res.Y), Z: optional(res.Z), Temperature: optional(res.Temperature)}
			if b, ok := magnetic.Bearing(res.X, res.Y); ok {
				out.Bearing = &b
			}
			enc := yaml.NewEncoder(os.Stdout)
			defer func() { _ = enc.Close() }()
			if err := enc.Encode(out); err != nil {
				return console.Exit(1, "encoding error: %s", console.Red(err))
			}
			return nil
		}
		console.PrintReading(res)
		return nil
	},
}

var magnetCmd = cli.Command{
	Name:    "magnet",
	Aliases: []string{"mag"},
	Usage:   "read the X, Y and Z axes",
	Action: func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer s.Close(c.Context)
		x, y, z, err := s.sensor.GetMagnet(commandContext(c))
		if err != nil {
			return console.Exit(1, "error getting magnetometer read: %s", console.Red(err))
		}
		console.Printf("%s x=%s y=%s z=%s\n", console.PictoMagnet, console.Word(x), console.Word(y), console.Word(z))
		return nil
	},
}

var bearingCmd = cli.Command{
	Name:    "bearing",
	Aliases: []string{"br"},
	Usage:   "read the planar bearing in degrees",
	Action: func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer s.Close(c.Context)
		b, ok, err := s.sensor.GetBearing(commandContext(c))
		if err != nil {
			return console.Exit(1, "error getting bearing: %s", console.Red(err))
		}
		console.PrintBearing(b, ok)
		return nil
	},
}

var temperatureCmd = cli.Command{
	Name:    "temperature",
	Aliases: []string{"temp"},
	Usage:   "read the raw temperature register",
	Action: func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer s.Close(c.Context)
		t, err := s.sensor.GetTemperature(commandContext(c))
		if err != nil {
			return console.Exit(1, "error getting temperature read: %s", console.Red(err))
		}
		console.Printf("%s %s\n", console.PictoThermometer, console.Word(t))
		return nil
	},
}
