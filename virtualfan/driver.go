// Package virtualfan simulates fan hardware for development, testing and simulation.
package virtualfan

import (
	"errors"

	"github.com/mdouchement/fans"
	"github.com/mdouchement/logger"
)

const (
	DefaultDutyCycle  fans.DutyCycle = 50
	DefaultRPM        fans.RPM       = 500
	DefaultMaximumRPM fans.RPM       = 2_000
	DefaultVoltage    fans.Voltage   = 12_000
	DefaultCurrent    fans.Current   = 0

	maximumDutyCycle fans.DutyCycle = 100
)

var (
	ErrInvalidFan          = errors.New("invalid fan selection")
	ErrDutyCycleOutOfRange = errors.New("duty cycle out of range")
	ErrRPMOutOfRange       = errors.New("RPM out of range")
)

type fan struct {
	dutyCycle fans.DutyCycle
	rpm       fans.RPM
	control   fans.Control
}

func newFan() fan {
	return fan{
		dutyCycle: DefaultDutyCycle,
		rpm:       DefaultRPM,
		control:   fans.DutyCycleControl(DefaultDutyCycle),
	}
}

// A Driver holds a fixed set of virtual fans sharing one RPM ceiling.
// It is not safe for concurrent use.
type Driver struct {
	fans       []fan
	rpmMaximum fans.RPM
	voltage    fans.Voltage
	current    fans.Current
	log        logger.Logger
}

type Option func(*Driver)

func WithMaximumRPM(rpm fans.RPM) Option {
	return func(d *Driver) {
		d.rpmMaximum = rpm
	}
}

func WithVoltage(mv fans.Voltage) Option {
	return func(d *Driver) {
		d.voltage = mv
	}
}

func WithCurrent(ma fans.Current) Option {
	return func(d *Driver) {
		d.current = ma
	}
}

func WithLogger(l logger.Logger) Option {
	return func(d *Driver) {
		d.log = l
	}
}

// New returns a driver of n fans. n is clamped to [0, 65535] and never changes afterwards.
func New(n int, opts ...Option) *Driver {
	n = min(max(n, 0), 0xFFFF)

	d := &Driver{
		fans:       make([]fan, n),
		rpmMaximum: DefaultMaximumRPM,
		voltage:    DefaultVoltage,
		current:    DefaultCurrent,
	}
	for i := range d.fans {
		d.fans[i] = newFan()
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) SetLogger(l logger.Logger) {
	d.log = l
}

func (d *Driver) Count() uint16 {
	return uint16(len(d.fans))
}

func (d *Driver) Validate(s fans.Select) error {
	if s == 0 || int(s) > len(d.fans) {
		return ErrInvalidFan
	}
	return nil
}

func (d *Driver) fan(s fans.Select) (*fan, error) {
	if err := d.Validate(s); err != nil {
		return nil, err
	}
	return &d.fans[s-1], nil
}

func (d *Driver) DutyCycle(s fans.Select) (fans.DutyCycle, error) {
	f, err := d.fan(s)
	if err != nil {
		return 0, err
	}
	return f.dutyCycle, nil
}

func (d *Driver) setDutyCycle(s fans.Select, duty fans.DutyCycle) error {
	f, err := d.fan(s)
	if err != nil {
		return err
	}

	if duty > maximumDutyCycle {
		return ErrDutyCycleOutOfRange
	}

	f.dutyCycle = duty
	return nil
}

func (d *Driver) RPM(s fans.Select) (fans.RPM, error) {
	f, err := d.fan(s)
	if err != nil {
		return 0, err
	}
	return f.rpm, nil
}

func (d *Driver) setRPM(s fans.Select, rpm fans.RPM) error {
	f, err := d.fan(s)
	if err != nil {
		return err
	}

	if rpm > d.rpmMaximum {
		return ErrRPMOutOfRange
	}

	f.rpm = rpm
	return nil
}

// Report returns the duty cycle and RPM of the selected fan.
func (d *Driver) Report(s fans.Select) (fans.DutyCycle, fans.RPM, error) {
	f, err := d.fan(s)
	if err != nil {
		return 0, 0, err
	}
	return f.dutyCycle, f.rpm, nil
}

// Mode returns the last control successfully applied to the selected fan.
func (d *Driver) Mode(s fans.Select) (fans.Control, error) {
	f, err := d.fan(s)
	if err != nil {
		return fans.Control{}, err
	}
	return f.control, nil
}

// SetMode applies c to the selected fan and records it as the active control.
// Duty cycle and RPM are stored independently: setting one does not recompute the other.
func (d *Driver) SetMode(s fans.Select, c fans.Control) error {
	f, err := d.fan(s)
	if err != nil {
		return err
	}

	if duty, ok := c.DutyCycle(); ok {
		err = d.setDutyCycle(s, duty)
	} else if rpm, ok := c.RPM(); ok {
		err = d.setRPM(s, rpm)
	}
	if err != nil {
		return err
	}

	f.control = c
	return nil
}

func (d *Driver) MaximumRPM() fans.RPM {
	return d.rpmMaximum
}

// SetMaximumRPM changes the ceiling for future RPM settings. Stored RPMs are left as is.
func (d *Driver) SetMaximumRPM(rpm fans.RPM) {
	d.rpmMaximum = rpm
}

// FanReport builds the wire report of the selected fan.
func (d *Driver) FanReport(s fans.Select) (fans.Report, error) {
	f, err := d.fan(s)
	if err != nil {
		return fans.Report{}, err
	}

	return fans.Report{
		Select:       s,
		Capabilities: fans.CapabilityDutyCycle | fans.CapabilityRPM,
		Connection:   fans.ConnectionVirtual,
		DutyCycle:    f.dutyCycle,
		RPM:          f.rpm,
		Mode:         f.control.Mode(),
		Voltage:      d.voltage,
		Current:      d.current,
	}, nil
}

// Reports returns the reports of all fans ordered by select.
func (d *Driver) Reports() []fans.Report {
	reports := make([]fans.Report, 0, len(d.fans))
	for i := range d.fans {
		r, _ := d.FanReport(fans.Select(i + 1)) // Always valid
		reports = append(reports, r)
	}

	return reports
}

// DumpInfo logs the state of every fan. It does nothing without a logger.
func (d *Driver) DumpInfo() {
	if d.log == nil {
		return
	}

	for i, f := range d.fans {
		d.log.Infof("Fan %d: duty_cycle=%d%% rpm=%d control=%s", i+1, f.dutyCycle, f.rpm, f.control)
	}
}
