package adapter

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/magsensor"
	"github.com/mklimuk/magsensor/snsctx"
)

// fakeBridge emulates the MCP2221 HID protocol with a single register mapped
// I2C slave behind it.
type fakeBridge struct {
	regs     map[byte]byte
	pointer  byte
	pending  int
	busy     bool
	readFail bool
	opened   int
	commands []byte
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{regs: map[byte]byte{}}
}

func (b *fakeBridge) open() (io.ReadWriteCloser, error) {
	b.opened++
	return &fakeHandle{bridge: b}, nil
}

type fakeHandle struct {
	bridge *fakeBridge
	resp   [reportSize]byte
}

func (h *fakeHandle) Write(p []byte) (int, error) {
	b := h.bridge
	b.commands = append(b.commands, p[0])
	h.resp[0] = p[0]
	switch p[0] {
	case cmdI2CWrite:
		if b.busy {
			h.resp[1] = responseFailed
			break
		}
		n := int(binary.LittleEndian.Uint16(p[1:3]))
		data := p[4 : 4+n]
		b.pointer = data[0]
		if n == 2 {
			b.regs[data[0]] = data[1]
		}
	case cmdI2CRead:
		b.pending = int(binary.LittleEndian.Uint16(p[1:3]))
	case cmdI2CGetData:
		if b.readFail {
			h.resp[1] = responseReadFail
			break
		}
		h.resp[3] = byte(b.pending)
		for i := 0; i < b.pending; i++ {
			h.resp[4+i] = b.regs[b.pointer+byte(i)]
		}
	case cmdStatus:
		h.resp[13] = 3
		h.resp[14] = 0x76
		h.resp[16] = 0x1A
		binary.LittleEndian.PutUint16(h.resp[9:11], 2)
		binary.LittleEndian.PutUint16(h.resp[11:13], 2)
	}
	return len(p), nil
}

func (h *fakeHandle) Read(p []byte) (int, error) {
	return copy(p, h.resp[:]), nil
}

func (h *fakeHandle) Close() error {
	return nil
}

func newTestAdapter(b *fakeBridge) *MCP2221 {
	return NewMCP2221(WithOpenFunc(b.open), WithResponseWait(0))
}

func TestMCP2221_RegisterAccess(t *testing.T) {
	bridge := newFakeBridge()
	bridge.regs[0x0D] = 0xFF
	regs := magsensor.NewI2CRegisters(newTestAdapter(bridge))
	ctx := snsctx.SetVerbose(context.Background(), true)

	require.NoError(t, regs.WriteRegister(ctx, 0x0D, 0x0B, 0x01))
	assert.Equal(t, byte(0x01), bridge.regs[0x0B])

	id, err := regs.ReadRegister(ctx, 0x0D, 0x0D)
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), id)
	assert.Equal(t, []byte{cmdI2CWrite, cmdI2CWrite, cmdI2CRead, cmdI2CGetData}, bridge.commands)
	// the device is opened per command
	assert.Equal(t, 4, bridge.opened)
}

func TestMCP2221_Busy(t *testing.T) {
	bridge := newFakeBridge()
	bridge.busy = true
	regs := magsensor.NewI2CRegisters(newTestAdapter(bridge))

	err := regs.WriteRegister(context.Background(), 0x0D, 0x0A, 0x80)
	var be *magsensor.BusError
	require.ErrorAs(t, err, &be)
	assert.ErrorIs(t, err, magsensor.ErrBusBusy)
}

func TestMCP2221_ReadFailure(t *testing.T) {
	bridge := newFakeBridge()
	bridge.readFail = true
	a := newTestAdapter(bridge)

	err := a.ReadFromAddr(context.Background(), 0x0D, make([]byte, 1))
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestMCP2221_Status(t *testing.T) {
	bridge := newFakeBridge()
	a := newTestAdapter(bridge)

	status, err := a.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, status.I2CDataBufferCounter)
	assert.Equal(t, 0x76, status.I2CSpeedDivider)
	assert.Equal(t, "1a00", status.CurrentAddress)
	assert.Equal(t, uint16(2), status.LastWriteRequestedSize)

	require.NoError(t, a.Init())
	assert.Equal(t, []byte{cmdStatus, cmdStatus}, bridge.commands)
}

func TestMCP2221_OpenFailure(t *testing.T) {
	a := NewMCP2221(WithOpenFunc(func() (io.ReadWriteCloser, error) {
		return nil, ErrDeviceNotFound
	}))
	err := a.WriteToAddr(context.Background(), 0x0D, []byte{0x06})
	assert.True(t, errors.Is(err, ErrDeviceNotFound))
}
