// Package config holds the build version and the sensor configuration file format.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is injected at build time.
var Version = "latest"

// Sensor describes which bus to open and how to configure the magnetometer.
// Zero values are replaced by Default's values.
type Sensor struct {
	// Adapter is one of generic, mcp2221, nanopi or mock.
	Adapter  string `yaml:"adapter"`
	Device   string `yaml:"device"`
	Bus      int    `yaml:"bus"`
	Address  byte   `yaml:"address"`
	SpeedKHz int    `yaml:"speed_khz"`
	// ODR is the output data rate in Hz.
	ODR int `yaml:"odr"`
	// Range is the full scale in gauss.
	Range        int           `yaml:"range"`
	Oversampling int           `yaml:"osr"`
	Interval     time.Duration `yaml:"interval"`
}

func Default() Sensor {
	return Sensor{
		Adapter:      "generic",
		Device:       "/dev/i2c-1",
		Bus:          -1,
		Address:      0x0D,
		ODR:          10,
		Range:        2,
		Oversampling: 512,
		Interval:     time.Second,
	}
}

// Decode reads a YAML document over the defaults.
func Decode(r io.Reader) (Sensor, error) {
	cfg := Default()
	err := yaml.NewDecoder(r).Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("could not decode config: %w", err)
	}
	return cfg, nil
}

// Load reads the config file at path; an empty path yields the defaults.
func Load(path string) (Sensor, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Sensor{}, fmt.Errorf("could not open config file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}
