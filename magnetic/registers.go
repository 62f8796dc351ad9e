package magnetic

// DefaultAddress is the 7-bit bus address of the QMC5883L.
const DefaultAddress = 0x0D

// chipIdentity is the value the chip ID register holds on a genuine QMC5883L.
const chipIdentity = 0xFF

// Output data registers, each value is stored LSB first.
const (
	regXOutLSB = 0x00
	regXOutMSB = 0x01
	regYOutLSB = 0x02
	regYOutMSB = 0x03
	regZOutLSB = 0x04
	regZOutMSB = 0x05
	regStatus  = 0x06
	regTOutLSB = 0x07
	regTOutMSB = 0x08
)

// Control registers
const (
	regControl1  = 0x09
	regControl2  = 0x0A
	regSetPeriod = 0x0B
	regChipID    = 0x0D
)

// Status register flags
const (
	statusDataReady  = 0b00000001 // DRDY
	statusOverflow   = 0b00000010 // OVL
	statusDataLocked = 0b00000100 // DOR: previous sample was read partially
)

// Control register 2 flags
const (
	control2InterruptEnable = 0b00000001
	control2PointerRollover = 0b01000000
	control2SoftReset       = 0b10000000
)

// setPeriodDefault is the SET/RESET period recommended by the datasheet.
const setPeriodDefault = 0x01

// Control register 1 mode bits
const (
	ModeStandby    byte = 0b00000000
	ModeContinuous byte = 0b00000001
)

// OutputDataRate selects how often a new sample is produced (control register 1, bits 3:2).
type OutputDataRate byte

const (
	ODR10Hz  OutputDataRate = 0b00000000
	ODR50Hz  OutputDataRate = 0b00000100
	ODR100Hz OutputDataRate = 0b00001000
	ODR200Hz OutputDataRate = 0b00001100
)

func (r OutputDataRate) String() string {
	switch r {
	case ODR50Hz:
		return "50Hz"
	case ODR100Hz:
		return "100Hz"
	case ODR200Hz:
		return "200Hz"
	default:
		return "10Hz"
	}
}

// Range selects the full scale of the sensor (control register 1, bits 5:4).
// 2G suits magnetically clean environments, 8G strong fields.
type Range byte

const (
	Range2G Range = 0b00000000
	Range8G Range = 0b00010000
)

func (r Range) String() string {
	if r == Range8G {
		return "8G"
	}
	return "2G"
}

// Oversampling selects the over sample rate (control register 1, bits 7:6).
// Higher rates mean less noise and more power.
type Oversampling byte

const (
	OSR512 Oversampling = 0b00000000
	OSR256 Oversampling = 0b01000000
	OSR128 Oversampling = 0b10000000
	OSR64  Oversampling = 0b11000000
)

func (o Oversampling) String() string {
	switch o {
	case OSR256:
		return "256"
	case OSR128:
		return "128"
	case OSR64:
		return "64"
	default:
		return "512"
	}
}
