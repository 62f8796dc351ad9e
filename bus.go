package magsensor

import (
	"context"
	"errors"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// I2CBus moves raw byte frames to and from an addressed peripheral.
type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// RegisterBus is the single-byte register access a register mapped device needs.
// Implementations report transport failures as *BusError.
type RegisterBus interface {
	WriteRegister(ctx context.Context, address, register, value byte) error
	ReadRegister(ctx context.Context, address, register byte) (byte, error)
}

// BusError reports a register transaction the transport could not complete.
type BusError struct {
	Op       string
	Address  byte
	Register byte
	Err      error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("bus %s failed (addr %#04x, reg %#04x): %v", e.Op, e.Address, e.Register, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// NewBusError wraps err unless it already carries a *BusError.
func NewBusError(op string, address, register byte, err error) error {
	if err == nil {
		return nil
	}
	var be *BusError
	if errors.As(err, &be) {
		return err
	}
	return &BusError{Op: op, Address: address, Register: register, Err: err}
}

var _ RegisterBus = &I2CRegisters{}

// I2CRegisters exposes register access on top of a raw I2CBus: a write is a
// two byte frame (register, value), a read sets the register pointer and then
// reads a single byte.
type I2CRegisters struct {
	bus I2CBus
}

func NewI2CRegisters(bus I2CBus) *I2CRegisters {
	return &I2CRegisters{bus: bus}
}

func (r *I2CRegisters) WriteRegister(ctx context.Context, address, register, value byte) error {
	err := r.bus.WriteToAddr(ctx, address, []byte{register, value})
	if err != nil {
		return NewBusError("write", address, register, err)
	}
	return nil
}

func (r *I2CRegisters) ReadRegister(ctx context.Context, address, register byte) (byte, error) {
	err := r.bus.WriteToAddr(ctx, address, []byte{register})
	if err != nil {
		return 0, NewBusError("set pointer", address, register, err)
	}
	buf := []byte{0x00}
	err = r.bus.ReadFromAddr(ctx, address, buf)
	if err != nil {
		return 0, NewBusError("read", address, register, err)
	}
	return buf[0], nil
}
