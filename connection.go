package fans

import (
	"errors"
	"fmt"
)

var ErrInvalidConnectionValue = errors.New("invalid fan connection value")

// Connection is the physical link state of a fan.
type Connection uint8

const (
	ConnectionNotConnected Connection = iota // default
	ConnectionThreePin                       // no PWM control
	ConnectionFourPin                        // Intel 4-pin with PWM control
	ConnectionVirtual                        // no physical connection
)

var connectionNames = [...]string{
	ConnectionNotConnected: "not_connected",
	ConnectionThreePin:     "three_pin",
	ConnectionFourPin:      "four_pin",
	ConnectionVirtual:      "virtual",
}

func ParseConnection(b byte) (Connection, error) {
	c := Connection(b)
	if !c.Valid() {
		return 0, ErrInvalidConnectionValue
	}
	return c, nil
}

func (c Connection) Valid() bool {
	return int(c) < len(connectionNames)
}

func (c Connection) String() string {
	if !c.Valid() {
		return fmt.Sprintf("connection(%d)", uint8(c))
	}
	return connectionNames[c]
}

func (c Connection) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrInvalidConnectionValue
	}
	return []byte(connectionNames[c]), nil
}

func (c *Connection) UnmarshalText(text []byte) error {
	for i, name := range connectionNames {
		if name == string(text) {
			*c = Connection(i)
			return nil
		}
	}
	return fmt.Errorf("%q: %w", text, ErrInvalidConnectionValue)
}
