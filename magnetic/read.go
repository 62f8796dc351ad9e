package magnetic

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// MaxPolls bounds the not-ready status polls of a single read (about 0.2s
// with the default poll interval). Data lock polls are not counted here.
const MaxPolls = 20

// MaxLockedPolls bounds the data lock polls of a single read, so a device
// that never clears the lock cannot keep GetData busy forever.
const MaxLockedPolls = 20

// Word is a decoded register pair. Valid is false when the value was not
// captured; zero is a legitimate reading.
type Word struct {
	Value int16
	Valid bool
}

func (w Word) String() string {
	if !w.Valid {
		return "n/a"
	}
	return strconv.Itoa(int(w.Value))
}

// Reading holds the raw, uncalibrated output registers.
type Reading struct {
	X           Word
	Y           Word
	Z           Word
	Temperature Word
}

// Status is the content of the status register.
type Status byte

func (s Status) Ready() bool {
	return s&statusDataReady != 0
}

func (s Status) Overflow() bool {
	return s&statusOverflow != 0
}

// DataLocked reports that the previous sample was read only partially.
func (s Status) DataLocked() bool {
	return s&statusDataLocked != 0
}

type pollOutcome int

const (
	pollNotReady pollOutcome = iota
	pollDataLocked
	pollDataReady
)

// outcome classifies a poll; overflow is orthogonal and checked separately.
// Data lock takes precedence over data ready.
func (s Status) outcome() pollOutcome {
	switch {
	case s.DataLocked():
		return pollDataLocked
	case s.Ready():
		return pollDataReady
	default:
		return pollNotReady
	}
}

// Status reads the status register.
func (s *QMC5883L) Status(ctx context.Context) (Status, error) {
	val, err := s.readRegister(ctx, regStatus)
	if err != nil {
		return 0, fmt.Errorf("qmc5883l: could not read status: %w", err)
	}
	return Status(val), nil
}

// GetData polls the status register until a new sample is ready and decodes
// all output registers. When no sample becomes ready within MaxPolls not-ready
// polls (or MaxLockedPolls data lock polls) the values captured so far are
// returned without error; missing values are not Valid.
func (s *QMC5883L) GetData(ctx context.Context) (Reading, error) {
	var res Reading
	var err error
	polls, locked := 0, 0
	for polls < MaxPolls && locked < MaxLockedPolls {
		var status Status
		status, err = s.Status(ctx)
		if err != nil {
			return res, err
		}
		if status.Overflow() {
			s.warnOverflow()
		}
		switch status.outcome() {
		case pollDataLocked:
			// sensor holds the stale sample until it is read completely; poll
			// again right away without spending the not-ready budget
			locked++
			res.X, res.Y, res.Z, err = s.readAxes(ctx)
			if err != nil {
				return res, err
			}
		case pollDataReady:
			res.X, res.Y, res.Z, err = s.readAxes(ctx)
			if err != nil {
				return res, err
			}
			res.Temperature, err = s.readWord(ctx, regTOutLSB)
			if err != nil {
				return res, err
			}
			return res, nil
		default:
			polls++
			s.sleep(s.pollInterval)
		}
	}
	s.log.Debug("data not ready", "polls", polls, "locked_polls", locked)
	return res, nil
}

// GetMagnet returns the X, Y and Z axis values.
func (s *QMC5883L) GetMagnet(ctx context.Context) (x, y, z Word, err error) {
	res, err := s.GetData(ctx)
	return res.X, res.Y, res.Z, err
}

// GetBearing returns the planar angle of the (X, Y) vector in degrees within
// [0, 360). The boolean is false when either axis could not be read.
func (s *QMC5883L) GetBearing(ctx context.Context) (float64, bool, error) {
	res, err := s.GetData(ctx)
	if err != nil {
		return 0, false, err
	}
	bearing, ok := Bearing(res.X, res.Y)
	return bearing, ok, nil
}

// GetTemperature returns the raw, uncalibrated temperature register value.
func (s *QMC5883L) GetTemperature(ctx context.Context) (Word, error) {
	res, err := s.GetData(ctx)
	return res.Temperature, err
}

// Bearing computes atan2(y, x) in degrees normalized into [0, 360).
func Bearing(x, y Word) (float64, bool) {
	if !x.Valid || !y.Valid {
		return 0, false
	}
	b := math.Atan2(float64(y.Value), float64(x.Value))
	if b < 0 {
		b += 2 * math.Pi
	}
	deg := b * 180 / math.Pi
	// atan2 of a tiny negative angle may round up to a full turn
	if deg >= 360 {
		deg -= 360
	}
	return deg, true
}

// Complement2 combines a register pair into a signed 16-bit value.
func Complement2(lsb, msb byte) int16 {
	val := int(msb)<<8 | int(lsb)
	if val >= 0x8000 {
		val -= 0x10000
	}
	return int16(val)
}

func (s *QMC5883L) warnOverflow() {
	if s.rng == Range2G {
		s.log.Warn("magnetic sensor overflow; consider switching to the 8G range")
		return
	}
	s.log.Warn("magnetic sensor overflow")
}

func (s *QMC5883L) readAxes(ctx context.Context) (x, y, z Word, err error) {
	x, err = s.readWord(ctx, regXOutLSB)
	if err != nil {
		return
	}
	y, err = s.readWord(ctx, regYOutLSB)
	if err != nil {
		return
	}
	z, err = s.readWord(ctx, regZOutLSB)
	return
}

// readWord reads the LSB register and the MSB register right after it.
func (s *QMC5883L) readWord(ctx context.Context, lsbRegister byte) (Word, error) {
	lsb, err := s.readRegister(ctx, lsbRegister)
	if err != nil {
		return Word{}, fmt.Errorf("qmc5883l: could not read register %#04x: %w", lsbRegister, err)
	}
	msb, err := s.readRegister(ctx, lsbRegister+1)
	if err != nil {
		return Word{}, fmt.Errorf("qmc5883l: could not read register %#04x: %w", lsbRegister+1, err)
	}
	return Word{Value: Complement2(lsb, msb), Valid: true}, nil
}
