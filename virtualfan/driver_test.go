package virtualfan

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/mdouchement/fans"
	"github.com/mdouchement/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_Validate(t *testing.T) {
	quad := New(4)
	assert.EqualValues(t, 4, quad.Count())

	assert.ErrorIs(t, quad.Validate(0), ErrInvalidFan)
	for i := range fans.Select(4) {
		assert.NoError(t, quad.Validate(i+1))
	}
	for _, s := range []fans.Select{5, 6, 0xFFFF} {
		assert.ErrorIs(t, quad.Validate(s), ErrInvalidFan)
	}
}

func TestDriver_Defaults(t *testing.T) {
	quad := New(4)
	assert.Equal(t, DefaultMaximumRPM, quad.MaximumRPM())

	for s := fans.Select(1); s <= 4; s++ {
		duty, rpm, err := quad.Report(s)
		require.NoError(t, err)
		assert.Equal(t, DefaultDutyCycle, duty)
		assert.Equal(t, DefaultRPM, rpm)

		c, err := quad.Mode(s)
		require.NoError(t, err)
		assert.Equal(t, fans.DutyCycleControl(DefaultDutyCycle), c)
	}
}

func TestDriver_InvalidSelect(t *testing.T) {
	quad := New(4)

	_, err := quad.DutyCycle(0)
	assert.ErrorIs(t, err, ErrInvalidFan)
	_, err = quad.RPM(5)
	assert.ErrorIs(t, err, ErrInvalidFan)
	_, err = quad.Mode(5)
	assert.ErrorIs(t, err, ErrInvalidFan)
	_, _, err = quad.Report(0)
	assert.ErrorIs(t, err, ErrInvalidFan)
	_, err = quad.FanReport(5)
	assert.ErrorIs(t, err, ErrInvalidFan)
	assert.ErrorIs(t, quad.SetMode(5, fans.DutyCycleControl(10)), ErrInvalidFan)
}

func TestDriver_DutyCycle(t *testing.T) {
	quad := New(4)

	for duty := range fans.DutyCycle(101) {
		for s := fans.Select(1); s <= 4; s++ {
			require.NoError(t, quad.setDutyCycle(s, duty))
			v, err := quad.DutyCycle(s)
			require.NoError(t, err)
			assert.Equal(t, duty, v)
		}
	}

	for duty := 101; duty <= 255; duty++ {
		assert.ErrorIs(t, quad.setDutyCycle(1, fans.DutyCycle(duty)), ErrDutyCycleOutOfRange)

		v, err := quad.DutyCycle(1)
		require.NoError(t, err)
		assert.EqualValues(t, 100, v)
	}
}

func TestDriver_RPM(t *testing.T) {
	quad := New(4)

	for rpm := range quad.MaximumRPM() + 1 {
		for s := fans.Select(1); s <= 4; s++ {
			require.NoError(t, quad.setRPM(s, rpm))
			v, err := quad.RPM(s)
			require.NoError(t, err)
			assert.Equal(t, rpm, v)
		}
	}

	assert.ErrorIs(t, quad.setRPM(1, DefaultMaximumRPM+1), ErrRPMOutOfRange)
	v, err := quad.RPM(1)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaximumRPM, v)
}

func TestDriver_MaximumRPM(t *testing.T) {
	quad := New(4)
	require.NoError(t, quad.SetMode(2, fans.RPMControl(1900)))

	quad.SetMaximumRPM(2_500)
	assert.EqualValues(t, 2_500, quad.MaximumRPM())

	assert.ErrorIs(t, quad.SetMode(1, fans.RPMControl(2_501)), ErrRPMOutOfRange)
	assert.NoError(t, quad.SetMode(1, fans.RPMControl(2_500)))

	// Lowering the ceiling does not clamp stored values.
	quad.SetMaximumRPM(1_000)
	rpm, err := quad.RPM(2)
	require.NoError(t, err)
	assert.EqualValues(t, 1_900, rpm)
}

func TestDriver_SetMode(t *testing.T) {
	quad := New(4)

	err := quad.SetMode(1, fans.DutyCycleControl(101))
	assert.ErrorIs(t, err, ErrDutyCycleOutOfRange)
	c, err := quad.Mode(1)
	require.NoError(t, err)
	assert.Equal(t, fans.DutyCycleControl(DefaultDutyCycle), c)

	for s := fans.Select(1); s <= 4; s++ {
		require.NoError(t, quad.SetMode(s, fans.RPMControl(DefaultRPM)))
		c, err := quad.Mode(s)
		require.NoError(t, err)
		assert.Equal(t, fans.RPMControl(DefaultRPM), c)
	}
}

func TestDriver_SetMode_RPMOutOfRange(t *testing.T) {
	quad := New(4)
	require.NoError(t, quad.SetMode(3, fans.RPMControl(700)))

	// The RPM branch reports its own error kind, not the duty cycle one.
	err := quad.SetMode(3, fans.RPMControl(DefaultMaximumRPM+1))
	assert.ErrorIs(t, err, ErrRPMOutOfRange)
	assert.NotErrorIs(t, err, ErrDutyCycleOutOfRange)

	c, err := quad.Mode(3)
	require.NoError(t, err)
	assert.Equal(t, fans.RPMControl(700), c)
	rpm, err := quad.RPM(3)
	require.NoError(t, err)
	assert.EqualValues(t, 700, rpm)
}

func TestDriver_SetMode_KeepsOtherValue(t *testing.T) {
	quad := New(4)

	require.NoError(t, quad.SetMode(1, fans.RPMControl(1_500)))
	require.NoError(t, quad.SetMode(1, fans.DutyCycleControl(20)))

	duty, rpm, err := quad.Report(1)
	require.NoError(t, err)
	assert.EqualValues(t, 20, duty)
	assert.EqualValues(t, 1_500, rpm)
}

func TestDriver_FanReport(t *testing.T) {
	quad := New(2, WithVoltage(5_000), WithCurrent(120))
	require.NoError(t, quad.SetMode(2, fans.RPMControl(900)))

	reports := quad.Reports()
	require.Len(t, reports, 2)

	assert.Equal(t, fans.Report{
		Select:       1,
		Capabilities: fans.CapabilityDutyCycle | fans.CapabilityRPM,
		Connection:   fans.ConnectionVirtual,
		DutyCycle:    DefaultDutyCycle,
		RPM:          DefaultRPM,
		Mode:         fans.ModeDutyCycle,
		Voltage:      5_000,
		Current:      120,
	}, reports[0])

	assert.Equal(t, fans.Select(2), reports[1].Select)
	assert.Equal(t, fans.ModeRPM, reports[1].Mode)
	assert.EqualValues(t, 900, reports[1].RPM)

	// Reports always fit the wire format.
	for _, r := range reports {
		p, err := r.MarshalBinary()
		require.NoError(t, err)
		decoded, err := fans.DecodeReport(p)
		require.NoError(t, err)
		assert.Equal(t, r, decoded)
	}
}

func TestDriver_NewClamp(t *testing.T) {
	assert.EqualValues(t, 0, New(-3).Count())
	assert.EqualValues(t, 0xFFFF, New(0x10000).Count())
}

func TestDriver_DumpInfo(t *testing.T) {
	quad := New(4)
	quad.DumpInfo() // No logger, no-op

	var buf bytes.Buffer
	quad.SetLogger(logger.WrapSlogHandler(logger.NewSlogTextHandler(&buf, &logger.SlogTextOption{
		Level:            slog.LevelInfo,
		DisableTimestamp: true,
	})))
	require.NoError(t, quad.SetMode(4, fans.RPMControl(1_200)))
	quad.DumpInfo()

	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, "Fan "))
	assert.Contains(t, out, "Fan 1:")
	assert.Contains(t, out, "Fan 4:")
	assert.Contains(t, out, "rpm(1200)")
}
