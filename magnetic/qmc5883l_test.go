package magnetic

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/magsensor"
)

// MockRegisterBus is a mock implementation of magsensor.RegisterBus using testify/mock
type MockRegisterBus struct {
	mock.Mock
}

func (m *MockRegisterBus) WriteRegister(ctx context.Context, address, register, value byte) error {
	args := m.Called(ctx, address, register, value)
	return args.Error(0)
}

func (m *MockRegisterBus) ReadRegister(ctx context.Context, address, register byte) (byte, error) {
	args := m.Called(ctx, address, register)
	return args.Get(0).(byte), args.Error(1)
}

// step is what the fake device exposes when the status register is polled.
type step struct {
	status byte
	regs   map[byte]byte
}

// fakeQMC is a scripted QMC5883L: every status read consumes one step and
// loads its registers; once the script runs out the status reads as not ready.
type fakeQMC struct {
	regs        [0x10]byte
	steps       []step
	statusReads int
	reads       []byte
	writes      [][2]byte
	readErr     map[byte]error
	writeErr    error
}

func newFakeQMC(steps ...step) *fakeQMC {
	f := &fakeQMC{steps: steps, readErr: map[byte]error{}}
	f.regs[regChipID] = chipIdentity
	return f
}

func (f *fakeQMC) WriteRegister(ctx context.Context, address, register, value byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, [2]byte{register, value})
	return nil
}

func (f *fakeQMC) ReadRegister(ctx context.Context, address, register byte) (byte, error) {
	if err, ok := f.readErr[register]; ok {
		return 0, err
	}
	f.reads = append(f.reads, register)
	if register == regStatus {
		var status byte
		if f.statusReads < len(f.steps) {
			s := f.steps[f.statusReads]
			for reg, val := range s.regs {
				f.regs[reg] = val
			}
			status = s.status
		}
		f.statusReads++
		return status, nil
	}
	if int(register) >= len(f.regs) {
		return 0, nil
	}
	return f.regs[register], nil
}

func sample(x, y, z, temp int16) map[byte]byte {
	regs := map[byte]byte{}
	for i, v := range []int16{x, y, z} {
		regs[byte(2*i)] = byte(uint16(v))
		regs[byte(2*i+1)] = byte(uint16(v) >> 8)
	}
	regs[regTOutLSB] = byte(uint16(temp))
	regs[regTOutMSB] = byte(uint16(temp) >> 8)
	return regs
}

type sleepRecorder struct {
	calls []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.calls = append(r.calls, d)
}

func (r *sleepRecorder) reset() {
	r.calls = nil
}

func newTestSensor(t *testing.T, bus magsensor.RegisterBus, opts ...QMC5883LConfigOption) (*QMC5883L, *sleepRecorder, *bytes.Buffer) {
	t.Helper()
	rec := &sleepRecorder{}
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]QMC5883LConfigOption{WithSleep(rec.sleep), WithLogger(logger)}, opts...)
	sensor, err := NewQMC5883L(context.Background(), bus, opts...)
	require.NoError(t, err)
	return sensor, rec, logs
}

func TestControlBytes(t *testing.T) {
	tests := []struct {
		name     string
		odr      OutputDataRate
		rng      Range
		osr      Oversampling
		expected byte
	}{
		{"defaults", ODR10Hz, Range2G, OSR512, 0x01},
		{"100Hz 8G 512", ODR100Hz, Range8G, OSR512, 0x19},
		{"50Hz 2G 128", ODR50Hz, Range2G, OSR128, 0x85},
		{"200Hz 8G 64", ODR200Hz, Range8G, OSR64, 0xDD},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ContinuousControl(test.odr, test.rng, test.osr))
		})
	}
	assert.Equal(t, byte(0xC0), StandbyControl())
}

func TestNewQMC5883L_InitSequence(t *testing.T) {
	bus := new(MockRegisterBus)
	mock.InOrder(
		bus.On("ReadRegister", mock.Anything, byte(0x2C), byte(regChipID)).Return(byte(0xFF), nil).Once(),
		bus.On("WriteRegister", mock.Anything, byte(0x2C), byte(regControl2), byte(control2SoftReset)).Return(nil).Once(),
		bus.On("WriteRegister", mock.Anything, byte(0x2C), byte(regControl2), byte(control2InterruptEnable)).Return(nil).Once(),
		bus.On("WriteRegister", mock.Anything, byte(0x2C), byte(regSetPeriod), byte(0x01)).Return(nil).Once(),
		bus.On("WriteRegister", mock.Anything, byte(0x2C), byte(regControl1), byte(0xDD)).Return(nil).Once(),
	)

	sensor, rec, _ := newTestSensor(t, bus,
		WithAddress(0x2C),
		WithOutputDataRate(ODR200Hz),
		WithRange(Range8G),
		WithOversampling(OSR64),
		WithWriteDelay(7*time.Millisecond),
	)
	bus.AssertExpectations(t)
	assert.Equal(t, []time.Duration{7 * time.Millisecond, 7 * time.Millisecond, 7 * time.Millisecond, 7 * time.Millisecond}, rec.calls)

	continuous, standby := sensor.ControlBytes()
	assert.Equal(t, byte(0xDD), continuous)
	assert.Equal(t, byte(0xC0), standby)
	assert.Equal(t, Range8G, sensor.Range())
}

func TestQMC5883L_StandbySequence(t *testing.T) {
	bus := newFakeQMC()
	sensor, rec, _ := newTestSensor(t, bus, WithOutputDataRate(ODR100Hz))
	bus.writes = nil
	rec.reset()

	sensor.Close(context.Background())
	assert.Equal(t, [][2]byte{
		{regControl2, control2SoftReset},
		{regControl2, control2InterruptEnable},
		{regSetPeriod, 0x01},
		{regControl1, 0xC0},
	}, bus.writes)
	assert.Len(t, rec.calls, 4)

	// second close is a no-op
	sensor.Close(context.Background())
	assert.Len(t, bus.writes, 4)
}

func TestQMC5883L_ModeTransitionsDelayEveryWrite(t *testing.T) {
	bus := newFakeQMC()
	sensor, rec, _ := newTestSensor(t, bus)
	rec.reset()
	bus.writes = nil

	require.NoError(t, sensor.EnterStandbyMode(context.Background()))
	require.NoError(t, sensor.EnterContinuousMode(context.Background()))
	assert.Len(t, bus.writes, 8)
	assert.Len(t, rec.calls, 8)
	for _, d := range rec.calls {
		assert.Equal(t, 10*time.Millisecond, d)
	}
	assert.Equal(t, [2]byte{regControl1, 0x01}, bus.writes[7])
}

func TestNewQMC5883L_WrongChipID(t *testing.T) {
	bus := newFakeQMC()
	bus.regs[regChipID] = 0x42

	sensor, _, logs := newTestSensor(t, bus)
	require.NotNil(t, sensor)
	assert.Contains(t, logs.String(), "unexpected chip id")
	assert.Contains(t, logs.String(), "0x42")
	// device is configured anyway
	require.Len(t, bus.writes, 4)
	assert.Equal(t, [2]byte{regControl1, 0x01}, bus.writes[3])
}

func TestNewQMC5883L_BusFailure(t *testing.T) {
	cause := errors.New("no ack")

	t.Run("chip id", func(t *testing.T) {
		bus := newFakeQMC()
		bus.readErr[regChipID] = cause
		_, err := NewQMC5883L(context.Background(), bus, WithSleep(func(time.Duration) {}))
		require.Error(t, err)
		var be *magsensor.BusError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, byte(regChipID), be.Register)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("mode write", func(t *testing.T) {
		bus := newFakeQMC()
		bus.writeErr = cause
		_, err := NewQMC5883L(context.Background(), bus, WithSleep(func(time.Duration) {}))
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "continuous mode")
	})
}

func TestQMC5883L_CloseSwallowsErrors(t *testing.T) {
	bus := newFakeQMC()
	sensor, _, logs := newTestSensor(t, bus)
	bus.writeErr = errors.New("bus gone")

	assert.NotPanics(t, func() { sensor.Close(context.Background()) })
	assert.Contains(t, logs.String(), "standby on close failed")
}

func TestQMC5883L_Register(t *testing.T) {
	bus := newFakeQMC()
	bus.regs[regSetPeriod] = 0x01
	sensor, _, _ := newTestSensor(t, bus)

	val, err := sensor.Register(context.Background(), regSetPeriod)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), val)

	id, err := sensor.ChipID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), id)
}

func TestParseOptions(t *testing.T) {
	odr, err := ParseOutputDataRate(200)
	require.NoError(t, err)
	assert.Equal(t, ODR200Hz, odr)
	_, err = ParseOutputDataRate(25)
	assert.ErrorIs(t, err, ErrInvalidOption)

	rng, err := ParseRange(8)
	require.NoError(t, err)
	assert.Equal(t, Range8G, rng)
	_, err = ParseRange(4)
	assert.ErrorIs(t, err, ErrInvalidOption)

	osr, err := ParseOversampling(64)
	require.NoError(t, err)
	assert.Equal(t, OSR64, osr)
	_, err = ParseOversampling(32)
	assert.ErrorIs(t, err, ErrInvalidOption)

	assert.Equal(t, "100Hz", ODR100Hz.String())
	assert.Equal(t, "8G", Range8G.String())
	assert.Equal(t, "128", OSR128.String())
}
