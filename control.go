package fans

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidControl = errors.New("invalid fan control")

// ControlKind is the tag of a Control.
type ControlKind uint8

const (
	ControlDutyCycle ControlKind = iota
	ControlRPM
)

func (k ControlKind) String() string {
	switch k {
	case ControlDutyCycle:
		return "duty_cycle"
	case ControlRPM:
		return "rpm"
	default:
		return fmt.Sprintf("control(%d)", uint8(k))
	}
}

// Control is the drive method of a fan: either a duty cycle or a target RPM.
// The zero value is DutyCycleControl(0).
type Control struct {
	kind  ControlKind
	value uint16
}

func DutyCycleControl(d DutyCycle) Control {
	return Control{kind: ControlDutyCycle, value: uint16(d)}
}

func RPMControl(r RPM) Control {
	return Control{kind: ControlRPM, value: r}
}

func (c Control) Kind() ControlKind {
	return c.kind
}

func (c Control) DutyCycle() (DutyCycle, bool) {
	return DutyCycle(c.value), c.kind == ControlDutyCycle
}

func (c Control) RPM() (RPM, bool) {
	return c.value, c.kind == ControlRPM
}

// Mode returns the report mode matching the control target.
func (c Control) Mode() Mode {
	if c.kind == ControlRPM {
		return ModeRPM
	}
	return ModeDutyCycle
}

func (c Control) String() string {
	return fmt.Sprintf("%s(%d)", c.kind, c.value)
}

type controlJSON struct {
	DutyCycle *DutyCycle `json:"duty_cycle,omitempty"`
	RPM       *RPM       `json:"rpm,omitempty"`
}

func (c Control) MarshalJSON() ([]byte, error) {
	var v controlJSON
	switch c.kind {
	case ControlDutyCycle:
		v.DutyCycle = ToPtr(DutyCycle(c.value))
	case ControlRPM:
		v.RPM = ToPtr(c.value)
	default:
		return nil, ErrInvalidControl
	}

	return json.Marshal(v)
}

func (c *Control) UnmarshalJSON(data []byte) error {
	var v controlJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch {
	case v.DutyCycle != nil && v.RPM == nil:
		*c = DutyCycleControl(*v.DutyCycle)
	case v.RPM != nil && v.DutyCycle == nil:
		*c = RPMControl(*v.RPM)
	default:
		return ErrInvalidControl
	}
	return nil
}
