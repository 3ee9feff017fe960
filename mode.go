package fans

import (
	"errors"
	"fmt"
)

var ErrInvalidModeValue = errors.New("invalid fan mode value")

// Mode is the control target a fan is operating on.
type Mode uint8

const (
	ModeDisabled         Mode = iota // default, fan disabled if supported
	ModeDutyCycle                    // targeting a duty cycle
	ModeRPM                          // targeting an RPM
	ModeTemperature                  // targeting a temperature
	ModeTemperatureCurve             // following a temperature curve
)

var modeNames = [...]string{
	ModeDisabled:         "disabled",
	ModeDutyCycle:        "duty_cycle",
	ModeRPM:              "rpm",
	ModeTemperature:      "temperature",
	ModeTemperatureCurve: "temperature_curve",
}

func ParseMode(b byte) (Mode, error) {
	m := Mode(b)
	if !m.Valid() {
		return 0, ErrInvalidModeValue
	}
	return m, nil
}

func (m Mode) Valid() bool {
	return int(m) < len(modeNames)
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
	return modeNames[m]
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, ErrInvalidModeValue
	}
	return []byte(modeNames[m]), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	for i, name := range modeNames {
		if name == string(text) {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("%q: %w", text, ErrInvalidModeValue)
}
