package i2c

import (
	"context"

	"tinygo.org/x/drivers"

	"github.com/mklimuk/magsensor"
)

var _ magsensor.RegisterBus = &TinyGoBus{}

// TinyGoBus adapts a tinygo drivers.I2C (machine.I2C on microcontrollers)
// to register access.
type TinyGoBus struct {
	bus drivers.I2C
}

func NewTinyGoBus(bus drivers.I2C) *TinyGoBus {
	return &TinyGoBus{bus: bus}
}

func (b *TinyGoBus) WriteRegister(ctx context.Context, address, register, value byte) error {
	err := b.bus.Tx(uint16(address), []byte{register, value}, nil)
	if err != nil {
		return magsensor.NewBusError("write", address, register, err)
	}
	return nil
}

func (b *TinyGoBus) ReadRegister(ctx context.Context, address, register byte) (byte, error) {
	var buf [1]byte
	err := b.bus.Tx(uint16(address), []byte{register}, buf[:])
	if err != nil {
		return 0, magsensor.NewBusError("read", address, register, err)
	}
	return buf[0], nil
}
