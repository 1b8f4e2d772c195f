package hrm

import (
	"fmt"
	"time"
)

// Heart Rate Measurement flag bits
// See: https://www.bluetooth.com/specifications/specs/heart-rate-service-1-0/
const (
	flagUint16Format     = 0x01
	flagContactSupported = 0x04
	flagContactDetected  = 0x02
	flagEnergyExpended   = 0x08
	flagRRIntervals      = 0x10
)

// Measurement is one decoded Heart Rate Measurement notification
type Measurement struct {
	BPM int

	// ContactSupported is false for straps that do not report skin contact,
	// in which case ContactDetected is meaningless
	ContactSupported bool
	ContactDetected  bool

	EnergyExpendedKJ int // -1 when not present
	RRIntervals      []time.Duration
}

// ParseMeasurement decodes the Heart Rate Measurement characteristic
func ParseMeasurement(buf []byte) (Measurement, error) {
	if len(buf) < 2 {
		return Measurement{}, fmt.Errorf("heart rate data too short: %d bytes", len(buf))
	}

	flags := buf[0]
	m := Measurement{
		ContactSupported: flags&flagContactSupported != 0,
		ContactDetected:  flags&flagContactDetected != 0,
		EnergyExpendedKJ: -1,
	}

	offset := 1
	if flags&flagUint16Format != 0 {
		if len(buf) < 3 {
			return Measurement{}, fmt.Errorf("heart rate UINT16 data too short: %d bytes", len(buf))
		}
		m.BPM = int(uint16(buf[1]) | uint16(buf[2])<<8)
		offset = 3
	} else {
		m.BPM = int(buf[1])
		offset = 2
	}

	if flags&flagEnergyExpended != 0 {
		if len(buf) < offset+2 {
			return Measurement{}, fmt.Errorf("energy expended field truncated at byte %d", offset)
		}
		m.EnergyExpendedKJ = int(uint16(buf[offset]) | uint16(buf[offset+1])<<8)
		offset += 2
	}

	if flags&flagRRIntervals != 0 {
		for ; offset+1 < len(buf); offset += 2 {
			raw := uint16(buf[offset]) | uint16(buf[offset+1])<<8
			// RR intervals are in 1/1024 s
			m.RRIntervals = append(m.RRIntervals, time.Duration(raw)*time.Second/1024)
		}
	}

	return m, nil
}

// Worn reports whether the strap is in contact with the skin, or cannot
// tell
func (m Measurement) Worn() bool {
	return !m.ContactSupported || m.ContactDetected
}
