package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/magsensor/cmd/magsensor/console"
	"github.com/mklimuk/magsensor/magnetic"
)

var errInvalidInterval = errors.New("watch interval must be positive")

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "read the sensor periodically until interrupted",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Usage:   "time between readings (defaults to the config file value)",
		},
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "stop after n readings, 0 means forever",
		},
	},
	Action: func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer s.Close(c.Context)
		interval := s.cfg.Interval
		if c.IsSet("interval") {
			interval = c.Duration("interval")
		}
		ctx, stop := signal.NotifyContext(commandContext(c), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = watch(ctx, s.sensor, interval, c.Int("count"), console.PrintReading)
		if err != nil {
			return console.Exit(1, "error getting magnetometer read: %s", console.Red(err))
		}
		return nil
	},
}

// watch reads the sensor every interval and hands the reading to out. It
// stops after count readings (count <= 0 means no limit) or when ctx is done.
func watch(ctx context.Context, sensor magnetic.Magnetometer, interval time.Duration, count int, out func(magnetic.Reading)) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", errInvalidInterval, interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for n := 0; count <= 0 || n < count; n++ {
		res, err := sensor.GetData(ctx)
		if err != nil {
			return err
		}
		out(res)
		if count > 0 && n+1 == count {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}
