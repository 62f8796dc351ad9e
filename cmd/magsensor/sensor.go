package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/magsensor"
	"github.com/mklimuk/magsensor/adapter"
	"github.com/mklimuk/magsensor/cmd/magsensor/console"
	"github.com/mklimuk/magsensor/i2c"
	"github.com/mklimuk/magsensor/magnetic"
	"github.com/mklimuk/magsensor/pkg/config"
	"github.com/mklimuk/magsensor/snsctx"
)

// session is an opened sensor together with everything that has to be
// released after it.
type session struct {
	cfg     config.Sensor
	sensor  magnetic.Magnetometer
	qmc     *magnetic.QMC5883L
	closers []func() error
}

func (s *session) Close(ctx context.Context) {
	if s.qmc != nil {
		s.qmc.Close(ctx)
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			console.Errorf("error releasing bus: %s", console.Red(err))
		}
	}
}

// device returns the hardware driver for commands which need register access.
func (s *session) device() (*magnetic.QMC5883L, error) {
	if s.qmc == nil {
		return nil, fmt.Errorf("adapter %q has no register access", s.cfg.Adapter)
	}
	return s.qmc, nil
}

func commandContext(c *cli.Context) context.Context {
	name := ""
	if c.Command != nil {
		name = c.Command.FullName()
	}
	return sessionContext(c.Context, c.Bool("verbose"), name)
}

// sessionContext carries the verbose flag and a logger tagged with the
// running command, picked up by the bus adapters.
func sessionContext(ctx context.Context, verbose bool, command string) context.Context {
	ctx = snsctx.SetVerbose(ctx, verbose)
	return snsctx.SetLogger(ctx, slog.Default().With("cmd", command))
}

// sensorConfig loads the config file and applies command line overrides.
func sensorConfig(c *cli.Context) (config.Sensor, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("device") {
		cfg.Device = c.String("device")
	}
	if c.IsSet("bus") {
		cfg.Bus = c.Int("bus")
	}
	if c.IsSet("addr") {
		addr, err := strconv.ParseUint(c.String("addr"), 16, 8)
		if err != nil {
			return cfg, fmt.Errorf("could not parse address %q: %w", c.String("addr"), err)
		}
		cfg.Address = byte(addr)
	}
	if c.IsSet("speed") {
		cfg.SpeedKHz = c.Int("speed")
	}
	if c.IsSet("odr") {
		cfg.ODR = c.Int("odr")
	}
	if c.IsSet("range") {
		cfg.Range = c.Int("range")
	}
	if c.IsSet("osr") {
		cfg.Oversampling = c.Int("osr")
	}
	return cfg, nil
}

func driverOptions(cfg config.Sensor) ([]magnetic.QMC5883LConfigOption, error) {
	odr, err := magnetic.ParseOutputDataRate(cfg.ODR)
	if err != nil {
		return nil, err
	}
	rng, err := magnetic.ParseRange(cfg.Range)
	if err != nil {
		return nil, err
	}
	osr, err := magnetic.ParseOversampling(cfg.Oversampling)
	if err != nil {
		return nil, err
	}
	return []magnetic.QMC5883LConfigOption{
		magnetic.WithAddress(cfg.Address),
		magnetic.WithOutputDataRate(odr),
		magnetic.WithRange(rng),
		magnetic.WithOversampling(osr),
	}, nil
}

func openSession(c *cli.Context) (*session, error) {
	cfg, err := sensorConfig(c)
	if err != nil {
		return nil, err
	}
	opts, err := driverOptions(cfg)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg}
	var bus magsensor.RegisterBus
	switch cfg.Adapter {
	case "mcp2221":
		a := adapter.NewMCP2221()
		if err := a.Init(); err != nil {
			return nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		bus = magsensor.NewI2CRegisters(a)
	case "generic":
		b, err := i2c.NewGenericBus(cfg.Device)
		if err != nil {
			return nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		s.closers = append(s.closers, b.Close)
		if cfg.SpeedKHz > 0 {
			if err := b.SetSpeed(physic.Frequency(cfg.SpeedKHz) * physic.KiloHertz); err != nil {
				s.Close(c.Context)
				return nil, err
			}
		}
		bus = b
	case "nanopi":
		npi := nanopi.NewNeoAdaptor()
		if err := npi.I2cBusAdaptor.Connect(); err != nil {
			return nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		gb := i2c.NewGobotBus(npi, cfg.Bus)
		s.closers = append(s.closers, npi.I2cBusAdaptor.Finalize, gb.Close)
		bus = gb
	case "mock":
		s.sensor = magnetic.NewMockQMC5883L(simulatedReading)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown adapter %q", cfg.Adapter)
	}
	ctx := commandContext(c)
	opts = append(opts, magnetic.WithLogger(snsctx.Logger(ctx)))
	qmc, err := magnetic.NewQMC5883L(ctx, bus, opts...)
	if err != nil {
		s.Close(c.Context)
		return nil, err
	}
	s.qmc = qmc
	s.sensor = qmc
	return s, nil
}

// simulatedReading is a field of constant strength turning 30 degrees per second.
func simulatedReading(ctx context.Context) (magnetic.Reading, error) {
	angle := float64(time.Now().UnixMilli()%12000) / 12000 * 2 * math.Pi
	return magnetic.Reading{
		X:           magnetic.Word{Value: int16(1500 * math.Cos(angle)), Valid: true},
		Y:           magnetic.Word{Value: int16(1500 * math.Sin(angle)), Valid: true},
		Z:           magnetic.Word{Value: -420, Valid: true},
		Temperature: magnetic.Word{Value: 2150, Valid: true},
	}, nil
}
