//go:build integration

package i2c

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/magsensor/magnetic"
)

// MAGSENSOR_DEVICE selects the bus the sensor is wired to.
func integrationDevice() string {
	if dev := os.Getenv("MAGSENSOR_DEVICE"); dev != "" {
		return dev
	}
	return "/dev/i2c-1"
}

func TestQMC5883L_Hardware(t *testing.T) {
	bus, err := NewGenericBus(integrationDevice())
	if err != nil {
		t.Skipf("no i2c bus available: %v", err)
	}
	defer func() { _ = bus.Close() }()

	ctx := context.Background()
	sensor, err := magnetic.NewQMC5883L(ctx, bus)
	require.NoError(t, err)
	defer sensor.Close(ctx)

	id, err := sensor.ChipID(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), id)

	res, err := sensor.GetData(ctx)
	require.NoError(t, err)
	assert.True(t, res.X.Valid)
	assert.True(t, res.Y.Valid)
	assert.True(t, res.Z.Valid)

	_, ok, err := sensor.GetBearing(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
