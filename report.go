package fans

import (
	"encoding/binary"
	"errors"
)

// ReportLength is the size in bytes of an encoded Report.
const ReportLength = 17

var ErrInvalidReportLength = errors.New("invalid fan report byte length")

// A Report contains the status of a fan.
//
// Wire layout, big-endian:
//
//	0-1   select
//	2-3   capabilities
//	4     connection
//	5     duty cycle
//	6-7   rpm
//	8     mode
//	9-12  voltage (mV)
//	13-16 current (mA)
type Report struct {
	Select       Select       `json:"select" yaml:"select"`
	Capabilities Capabilities `json:"capabilities" yaml:"capabilities"`
	Connection   Connection   `json:"connection" yaml:"connection"`
	DutyCycle    DutyCycle    `json:"duty_cycle" yaml:"duty_cycle"`
	RPM          RPM          `json:"rpm" yaml:"rpm"`
	Mode         Mode         `json:"mode" yaml:"mode"`
	Voltage      Voltage      `json:"voltage" yaml:"voltage"`
	Current      Current      `json:"current" yaml:"current"`
}

// Encode writes r into out which must be exactly ReportLength bytes long.
func (r Report) Encode(out []byte) error {
	if len(out) != ReportLength {
		return ErrInvalidReportLength
	}

	binary.BigEndian.PutUint16(out[0:2], uint16(r.Select))
	binary.BigEndian.PutUint16(out[2:4], uint16(r.Capabilities))
	out[4] = byte(r.Connection)
	out[5] = r.DutyCycle
	binary.BigEndian.PutUint16(out[6:8], r.RPM)
	out[8] = byte(r.Mode)
	binary.BigEndian.PutUint32(out[9:13], r.Voltage)
	binary.BigEndian.PutUint32(out[13:17], r.Current)

	return nil
}

func (r Report) MarshalBinary() ([]byte, error) {
	out := make([]byte, ReportLength)
	return out, r.Encode(out)
}

// DecodeReport parses a ReportLength bytes frame.
// Only the connection and mode bytes are range checked.
func DecodeReport(data []byte) (Report, error) {
	if len(data) != ReportLength {
		return Report{}, ErrInvalidReportLength
	}

	connection, err := ParseConnection(data[4])
	if err != nil {
		return Report{}, err
	}

	mode, err := ParseMode(data[8])
	if err != nil {
		return Report{}, err
	}

	return Report{
		Select:       Select(binary.BigEndian.Uint16(data[0:2])),
		Capabilities: Capabilities(binary.BigEndian.Uint16(data[2:4])),
		Connection:   connection,
		DutyCycle:    data[5],
		RPM:          binary.BigEndian.Uint16(data[6:8]),
		Mode:         mode,
		Voltage:      binary.BigEndian.Uint32(data[9:13]),
		Current:      binary.BigEndian.Uint32(data[13:17]),
	}, nil
}

func (r *Report) UnmarshalBinary(data []byte) error {
	v, err := DecodeReport(data)
	if err != nil {
		return err
	}

	*r = v
	return nil
}

// Validate checks the enumerated fields of a report built from another format than its wire layout.
func (r Report) Validate() error {
	if !r.Connection.Valid() {
		return ErrInvalidConnectionValue
	}
	if !r.Mode.Valid() {
		return ErrInvalidModeValue
	}
	return nil
}
