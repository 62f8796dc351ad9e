package i2c

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mklimuk/magsensor"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var _ magsensor.I2CBus = &GenericBus{}
var _ magsensor.RegisterBus = &GenericBus{}

// GenericBus is a host I2C bus (e.g. /dev/i2c-1) driven through periph.io.
type GenericBus struct {
	bus i2c.BusCloser
}

// NewGenericBus initializes the host drivers and opens the named bus; an
// empty name opens the first available one.
func NewGenericBus(dev string) (*GenericBus, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("host driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus: %w", err)
	}
	return NewBus(bus), nil
}

// NewBus wraps an already opened periph bus.
func NewBus(bus i2c.BusCloser) *GenericBus {
	return &GenericBus{
		bus: bus,
	}
}

func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

// WriteRegister writes a single register in one transaction.
func (b *GenericBus) WriteRegister(ctx context.Context, address, register, value byte) error {
	err := b.bus.Tx(uint16(address), []byte{register, value}, nil)
	if err != nil {
		return magsensor.NewBusError("write", address, register, err)
	}
	return nil
}

// ReadRegister sets the register pointer and reads the value back using a
// repeated start.
func (b *GenericBus) ReadRegister(ctx context.Context, address, register byte) (byte, error) {
	buf := []byte{0x00}
	err := b.bus.Tx(uint16(address), []byte{register}, buf)
	if err != nil {
		return 0, magsensor.NewBusError("read", address, register, err)
	}
	return buf[0], nil
}

// SetSpeed changes the bus clock.
func (b *GenericBus) SetSpeed(f physic.Frequency) error {
	err := b.bus.SetSpeed(f)
	if err != nil {
		return fmt.Errorf("could not set i2c bus speed to %s: %w", f, err)
	}
	return nil
}

func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}
