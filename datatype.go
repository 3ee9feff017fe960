package fans

type (
	// Select is the 1-based index of a fan among N. 0 is reserved.
	Select uint16

	DutyCycle = uint8  // percent, [0,100]
	RPM       = uint16 // revolutions per minute
	Voltage   = uint32 // millivolts
	Current   = uint32 // milliamps

	Capabilities uint16
)

const (
	CapabilityDutyCycle Capabilities = 1 << iota
	CapabilityRPM
)

func (c Capabilities) Has(bits Capabilities) bool {
	return c&bits == bits
}

func ToPtr[T any](v T) *T {
	return &v
}
