package magnetic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mklimuk/magsensor"
)

// Magnetometer is what consumers of a 3-axis sensor need; QMC5883L and
// MockMagnetometer both implement it.
type Magnetometer interface {
	GetData(ctx context.Context) (Reading, error)
	GetMagnet(ctx context.Context) (x, y, z Word, err error)
	GetBearing(ctx context.Context) (float64, bool, error)
	GetTemperature(ctx context.Context) (Word, error)
}

var _ Magnetometer = &QMC5883L{}

// QMC5883L represents QST QMC5883L 3-axis magnetic sensor
// See: https://datasheetspdf.com/pdf-file/1309218/QST/QMC5883L/1
//
// Usage: instantiate with NewQMC5883L, which leaves the device in continuous
// mode, read with GetData/GetMagnet/GetBearing/GetTemperature and release
// with Close, which puts the device back into standby.
type QMC5883L struct {
	transport magsensor.RegisterBus
	address   byte
	rng       Range

	// control register 1 values, fixed at construction
	continuous byte
	standby    byte

	writeDelay   time.Duration
	pollInterval time.Duration
	sleep        func(time.Duration)
	log          *slog.Logger
	closed       bool
}

// NewQMC5883L checks the chip identity and switches the device into
// continuous measurement mode. An unexpected identity is only reported,
// initialization carries on.
func NewQMC5883L(ctx context.Context, trans magsensor.RegisterBus, opts ...QMC5883LConfigOption) (*QMC5883L, error) {
	config := &QMC5883LConfig{
		Address:        DefaultAddress,
		OutputDataRate: ODR10Hz,
		Range:          Range2G,
		Oversampling:   OSR512,
		WriteDelay:     defaultWriteDelay,
		PollInterval:   defaultPollInterval,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Sleep == nil {
		config.Sleep = time.Sleep
	}
	sensor := &QMC5883L{
		transport:    trans,
		address:      config.Address,
		rng:          config.Range,
		continuous:   ContinuousControl(config.OutputDataRate, config.Range, config.Oversampling),
		standby:      StandbyControl(),
		writeDelay:   config.WriteDelay,
		pollInterval: config.PollInterval,
		sleep:        config.Sleep,
		log:          config.Logger.With("sensor", "qmc5883l", "addr", fmt.Sprintf("%#x", config.Address)),
	}
	id, err := sensor.ChipID(ctx)
	if err != nil {
		return nil, fmt.Errorf("qmc5883l: could not read chip id: %w", err)
	}
	if id != chipIdentity {
		sensor.log.Warn("unexpected chip id; is this the wrong chip?", "chip_id", fmt.Sprintf("%#x", id), "expected", fmt.Sprintf("%#x", chipIdentity))
	}
	err = sensor.EnterContinuousMode(ctx)
	if err != nil {
		return nil, err
	}
	return sensor, nil
}

// ContinuousControl packs the control register 1 value for continuous mode.
func ContinuousControl(odr OutputDataRate, rng Range, osr Oversampling) byte {
	return ModeContinuous | byte(odr) | byte(rng) | byte(osr)
}

// StandbyControl is the low power control register 1 value: lowest rate,
// narrowest range and lowest oversampling.
func StandbyControl() byte {
	return ModeStandby | byte(ODR10Hz) | byte(Range2G) | byte(OSR64)
}

// EnterContinuousMode resets the device and starts continuous measurement.
func (s *QMC5883L) EnterContinuousMode(ctx context.Context) error {
	err := s.setMode(ctx, s.continuous)
	if err != nil {
		return fmt.Errorf("qmc5883l: could not enter continuous mode: %w", err)
	}
	s.log.Debug("continuous mode", "control", fmt.Sprintf("%#08b", s.continuous))
	return nil
}

// EnterStandbyMode resets the device and stops measuring.
func (s *QMC5883L) EnterStandbyMode(ctx context.Context) error {
	err := s.setMode(ctx, s.standby)
	if err != nil {
		return fmt.Errorf("qmc5883l: could not enter standby mode: %w", err)
	}
	s.log.Debug("standby mode", "control", fmt.Sprintf("%#08b", s.standby))
	return nil
}

// setMode runs the reset sequence which has to precede every control register 1 write.
func (s *QMC5883L) setMode(ctx context.Context, control byte) error {
	// soft reset
	err := s.writeRegister(ctx, regControl2, control2SoftReset)
	if err != nil {
		return fmt.Errorf("soft reset: %w", err)
	}
	// interrupt pin setting
	err = s.writeRegister(ctx, regControl2, control2InterruptEnable)
	if err != nil {
		return fmt.Errorf("interrupt setting: %w", err)
	}
	err = s.writeRegister(ctx, regSetPeriod, setPeriodDefault)
	if err != nil {
		return fmt.Errorf("set/reset period: %w", err)
	}
	err = s.writeRegister(ctx, regControl1, control)
	if err != nil {
		return fmt.Errorf("operation mode: %w", err)
	}
	return nil
}

// Close puts the device into standby. It never fails: cleanup errors are
// logged and dropped. Calling Close more than once is a no-op.
func (s *QMC5883L) Close(ctx context.Context) {
	if s.closed {
		return
	}
	s.closed = true
	err := s.EnterStandbyMode(ctx)
	if err != nil {
		s.log.Debug("standby on close failed", "error", err)
	}
}

// ChipID reads the identification register.
func (s *QMC5883L) ChipID(ctx context.Context) (byte, error) {
	return s.readRegister(ctx, regChipID)
}

// Register reads a single register.
func (s *QMC5883L) Register(ctx context.Context, register byte) (byte, error) {
	val, err := s.readRegister(ctx, register)
	if err != nil {
		return 0, fmt.Errorf("qmc5883l: could not read register %#04x: %w", register, err)
	}
	return val, nil
}

// ControlBytes returns the control register 1 values used for continuous and standby mode.
func (s *QMC5883L) ControlBytes() (continuous, standby byte) {
	return s.continuous, s.standby
}

func (s *QMC5883L) Range() Range {
	return s.rng
}

func (s *QMC5883L) writeRegister(ctx context.Context, register, value byte) error {
	err := s.transport.WriteRegister(ctx, s.address, register, value)
	if err != nil {
		return magsensor.NewBusError("write", s.address, register, err)
	}
	// the device needs time to settle after every write
	s.sleep(s.writeDelay)
	return nil
}

func (s *QMC5883L) readRegister(ctx context.Context, register byte) (byte, error) {
	val, err := s.transport.ReadRegister(ctx, s.address, register)
	if err != nil {
		return 0, magsensor.NewBusError("read", s.address, register, err)
	}
	return val, nil
}
