package i2c

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gobotio "gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/magsensor"
)

var _ magsensor.RegisterBus = &GobotBus{}

// GobotBus provides register access through a gobot platform adaptor
// (nanopi, raspi, ...). Connections are opened lazily, one per address.
type GobotBus struct {
	mx        sync.Mutex
	connector gobotio.Connector
	busNr     int
	conns     map[byte]gobotio.Connection
}

// NewGobotBus uses bus number busNr of the connector, or its default bus
// when busNr is negative.
func NewGobotBus(connector gobotio.Connector, busNr int) *GobotBus {
	if busNr < 0 {
		busNr = connector.DefaultI2cBus()
	}
	return &GobotBus{
		connector: connector,
		busNr:     busNr,
		conns:     make(map[byte]gobotio.Connection),
	}
}

func (b *GobotBus) WriteRegister(ctx context.Context, address, register, value byte) error {
	conn, err := b.connection(address)
	if err != nil {
		return magsensor.NewBusError("write", address, register, err)
	}
	err = conn.WriteByteData(register, value)
	if err != nil {
		return magsensor.NewBusError("write", address, register, err)
	}
	return nil
}

func (b *GobotBus) ReadRegister(ctx context.Context, address, register byte) (byte, error) {
	conn, err := b.connection(address)
	if err != nil {
		return 0, magsensor.NewBusError("read", address, register, err)
	}
	val, err := conn.ReadByteData(register)
	if err != nil {
		return 0, magsensor.NewBusError("read", address, register, err)
	}
	return val, nil
}

func (b *GobotBus) connection(address byte) (gobotio.Connection, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if conn, ok := b.conns[address]; ok {
		return conn, nil
	}
	conn, err := b.connector.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not get connection to %#x on bus %d: %w", address, b.busNr, err)
	}
	b.conns[address] = conn
	return conn, nil
}

// Close closes every connection opened so far.
func (b *GobotBus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var errs []error
	for addr, conn := range b.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close connection to %#x: %w", addr, err))
		}
		delete(b.conns, addr)
	}
	return errors.Join(errs...)
}
