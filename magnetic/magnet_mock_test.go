package magnetic

import (
	"context"
	"fmt"
	"math"
	"testing"
)

func TestMockMagnetometer_StaticValues(t *testing.T) {
	sensor := NewMockMagnetometer(func(ctx context.Context) (Reading, error) {
		return Reading{X: word(-1), Y: word(0), Z: word(42), Temperature: word(7)}, nil
	})
	ctx := context.Background()

	res, err := sensor.GetData(ctx)
	if err != nil {
		t.Fatalf("GetData: unexpected error: %v", err)
	}
	if res.Z.Value != 42 || !res.Z.Valid {
		t.Errorf("expected z 42, got %s", res.Z)
	}

	b, ok, err := sensor.GetBearing(ctx)
	if err != nil {
		t.Fatalf("GetBearing: unexpected error: %v", err)
	}
	if !ok || math.Abs(b-180) > 1e-9 {
		t.Errorf("expected bearing 180, got %f (ok=%v)", b, ok)
	}

	temp, err := sensor.GetTemperature(ctx)
	if err != nil {
		t.Fatalf("GetTemperature: unexpected error: %v", err)
	}
	if temp != word(7) {
		t.Errorf("expected temperature 7, got %s", temp)
	}
}

func TestMockMagnetometer_Absent(t *testing.T) {
	sensor := NewMockQMC5883L(func(ctx context.Context) (Reading, error) {
		return Reading{}, nil
	})

	x, y, z, err := sensor.GetMagnet(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x.Valid || y.Valid || z.Valid {
		t.Errorf("expected absent axes, got %s/%s/%s", x, y, z)
	}
	_, ok, _ := sensor.GetBearing(context.Background())
	if ok {
		t.Error("expected no bearing without axis values")
	}
}

func TestMockMagnetometer_ErrorHandling(t *testing.T) {
	sensor := NewMockMagnetometer(func(ctx context.Context) (Reading, error) {
		return Reading{}, fmt.Errorf("sensor unplugged")
	})

	_, _, err := sensor.GetBearing(context.Background())
	if err == nil || err.Error() != "sensor unplugged" {
		t.Errorf("GetBearing: expected specific error, got %v", err)
	}
	_, err = sensor.GetTemperature(context.Background())
	if err == nil {
		t.Error("GetTemperature: expected error")
	}
}

func TestMockMagnetometer_CounterBehavior(t *testing.T) {
	counter := int16(0)
	sensor := NewMockMagnetometer(func(ctx context.Context) (Reading, error) {
		counter++
		return Reading{X: word(counter), Y: word(-counter)}, nil
	})

	for i := int16(1); i <= 3; i++ {
		x, y, _, err := sensor.GetMagnet(context.Background())
		if err != nil {
			t.Fatalf("reading %d: unexpected error: %v", i, err)
		}
		if x.Value != i || y.Value != -i {
			t.Errorf("reading %d: expected %d/%d, got %s/%s", i, i, -i, x, y)
		}
	}
}
