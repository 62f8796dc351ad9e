package magnetic

import (
	"fmt"
	"log/slog"
	"time"
)

var ErrInvalidOption = fmt.Errorf("invalid option")

const (
	defaultWriteDelay   = 10 * time.Millisecond
	defaultPollInterval = 10 * time.Millisecond
)

type QMC5883LConfig struct {
	Address        byte
	OutputDataRate OutputDataRate
	Range          Range
	Oversampling   Oversampling
	// WriteDelay is the settling time observed after every register write.
	WriteDelay time.Duration
	// PollInterval is the pause between status polls that found no new data.
	PollInterval time.Duration
	Logger       *slog.Logger
	Sleep        func(time.Duration)
}

type QMC5883LConfigOption func(*QMC5883LConfig)

func WithAddress(address byte) QMC5883LConfigOption {
	return func(c *QMC5883LConfig) {
		c.Address = address
	}
}

func WithOutputDataRate(odr OutputDataRate) QMC5883LConfigOption {
	return func(c *QMC5883LConfig) {
		c.OutputDataRate = odr
	}
}

func WithRange(rng Range) QMC5883LConfigOption {
	return func(c *QMC5883LConfig) {
		c.Range = rng
	}
}

func WithOversampling(osr Oversampling) QMC5883LConfigOption {
	return func(c *QMC5883LConfig) {
		c.Oversampling = osr
	}
}

func WithWriteDelay(delay time.Duration) QMC5883LConfigOption {
	return func(c *QMC5883LConfig) {
		c.WriteDelay = delay
	}
}

func WithPollInterval(interval time.Duration) QMC5883LConfigOption {
	return func(c *QMC5883LConfig) {
		c.PollInterval = interval
	}
}

func WithLogger(logger *slog.Logger) QMC5883LConfigOption {
	return func(c *QMC5883LConfig) {
		c.Logger = logger
	}
}

// WithSleep replaces time.Sleep for every delay the driver observes.
func WithSleep(sleep func(time.Duration)) QMC5883LConfigOption {
	return func(c *QMC5883LConfig) {
		c.Sleep = sleep
	}
}

// ParseOutputDataRate maps a rate in Hz (10, 50, 100, 200) to its register value.
func ParseOutputDataRate(hz int) (OutputDataRate, error) {
	switch hz {
	case 10:
		return ODR10Hz, nil
	case 50:
		return ODR50Hz, nil
	case 100:
		return ODR100Hz, nil
	case 200:
		return ODR200Hz, nil
	}
	return 0, fmt.Errorf("%w: output data rate %d Hz (expected 10, 50, 100 or 200)", ErrInvalidOption, hz)
}

// ParseRange maps a full scale in gauss (2 or 8) to its register value.
func ParseRange(gauss int) (Range, error) {
	switch gauss {
	case 2:
		return Range2G, nil
	case 8:
		return Range8G, nil
	}
	return 0, fmt.Errorf("%w: range %d G (expected 2 or 8)", ErrInvalidOption, gauss)
}

// ParseOversampling maps an over sample rate (512, 256, 128, 64) to its register value.
func ParseOversampling(osr int) (Oversampling, error) {
	switch osr {
	case 512:
		return OSR512, nil
	case 256:
		return OSR256, nil
	case 128:
		return OSR128, nil
	case 64:
		return OSR64, nil
	}
	return 0, fmt.Errorf("%w: oversampling %d (expected 512, 256, 128 or 64)", ErrInvalidOption, osr)
}
