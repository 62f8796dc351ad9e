package magnetic

import (
	"context"
)

// ReadingBehaviorFunc defines the function signature for magnetometer behavior.
// It returns a raw reading or an error.
type ReadingBehaviorFunc func(ctx context.Context) (Reading, error)

// MockMagnetometer is a mock implementation of a 3-axis magnetic sensor that uses a behavior function
// to produce readings without requiring any hardware.
// Projections (magnet, bearing, temperature) are derived from the behavior's reading the same way
// the QMC5883L derives them.
type MockMagnetometer struct {
	behavior ReadingBehaviorFunc
}

var _ Magnetometer = &MockMagnetometer{}

// NewMockMagnetometer creates a new mock magnetometer with the given behavior function.
//
// Example usage:
//
//	// Pointing east
//	sensor := NewMockMagnetometer(func(ctx context.Context) (Reading, error) {
//		return Reading{X: Word{0, true}, Y: Word{1200, true}, Z: Word{-300, true}}, nil
//	})
//
//	// Permanent timeout
//	sensor := NewMockMagnetometer(func(ctx context.Context) (Reading, error) {
//		return Reading{}, nil
//	})
func NewMockMagnetometer(behavior ReadingBehaviorFunc) *MockMagnetometer {
	return &MockMagnetometer{behavior: behavior}
}

// NewMockQMC5883L creates a new mock QMC5883L sensor (alias for NewMockMagnetometer).
func NewMockQMC5883L(behavior ReadingBehaviorFunc) *MockMagnetometer {
	return NewMockMagnetometer(behavior)
}

// GetData returns the reading produced by the behavior function.
func (m *MockMagnetometer) GetData(ctx context.Context) (Reading, error) {
	return m.behavior(ctx)
}

// GetMagnet returns the axis values of the behavior's reading.
func (m *MockMagnetometer) GetMagnet(ctx context.Context) (x, y, z Word, err error) {
	res, err := m.behavior(ctx)
	return res.X, res.Y, res.Z, err
}

// GetBearing returns the bearing of the behavior's reading.
func (m *MockMagnetometer) GetBearing(ctx context.Context) (float64, bool, error) {
	res, err := m.behavior(ctx)
	if err != nil {
		return 0, false, err
	}
	b, ok := Bearing(res.X, res.Y)
	return b, ok, nil
}

// GetTemperature returns the temperature of the behavior's reading.
func (m *MockMagnetometer) GetTemperature(ctx context.Context) (Word, error) {
	res, err := m.behavior(ctx)
	return res.Temperature, err
}
