// Package serialize provides optional encodings of the fan types beside their wire layout.
package serialize

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/mdouchement/fans"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	decMode, err = cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Enumerations are kept as their wire byte.
type report struct {
	Select       uint16 `cbor:"1,keyasint"`
	Capabilities uint16 `cbor:"2,keyasint"`
	Connection   uint8  `cbor:"3,keyasint"`
	DutyCycle    uint8  `cbor:"4,keyasint"`
	RPM          uint16 `cbor:"5,keyasint"`
	Mode         uint8  `cbor:"6,keyasint"`
	Voltage      uint32 `cbor:"7,keyasint"`
	Current      uint32 `cbor:"8,keyasint"`
}

// MarshalCBOR encodes r as a deterministic CBOR map with integer keys.
func MarshalCBOR(r fans.Report) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("cbor: %w", err)
	}

	return encMode.Marshal(report{
		Select:       uint16(r.Select),
		Capabilities: uint16(r.Capabilities),
		Connection:   uint8(r.Connection),
		DutyCycle:    r.DutyCycle,
		RPM:          r.RPM,
		Mode:         uint8(r.Mode),
		Voltage:      r.Voltage,
		Current:      r.Current,
	})
}

func UnmarshalCBOR(data []byte) (fans.Report, error) {
	var v report
	if err := decMode.Unmarshal(data, &v); err != nil {
		return fans.Report{}, fmt.Errorf("cbor: %w", err)
	}

	r := fans.Report{
		Select:       fans.Select(v.Select),
		Capabilities: fans.Capabilities(v.Capabilities),
		Connection:   fans.Connection(v.Connection),
		DutyCycle:    v.DutyCycle,
		RPM:          v.RPM,
		Mode:         fans.Mode(v.Mode),
		Voltage:      v.Voltage,
		Current:      v.Current,
	}
	if err := r.Validate(); err != nil {
		return fans.Report{}, fmt.Errorf("cbor: %w", err)
	}

	return r, nil
}
