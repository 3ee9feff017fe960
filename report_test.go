package fans_test

import (
	"bytes"
	"testing"

	"github.com/mdouchement/fans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame() []byte {
	return []byte{
		0x00, 0x01,
		0x00, 0x03,
		0x02,
		0x64,
		0x02, 0x58,
		0x01,
		0x00, 0x61, 0xA8, 0x00,
		0x00, 0x00, 0x27, 0x10,
	}
}

func TestDecodeReport(t *testing.T) {
	report, err := fans.DecodeReport(frame())
	require.NoError(t, err)

	assert.Equal(t, fans.Select(1), report.Select)
	assert.Equal(t, fans.Capabilities(3), report.Capabilities)
	assert.Equal(t, fans.ConnectionFourPin, report.Connection)
	assert.EqualValues(t, 100, report.DutyCycle)
	assert.EqualValues(t, 600, report.RPM)
	assert.Equal(t, fans.ModeDutyCycle, report.Mode)
	assert.EqualValues(t, 6400000, report.Voltage)
	assert.EqualValues(t, 10000, report.Current)

	assert.True(t, report.Capabilities.Has(fans.CapabilityDutyCycle|fans.CapabilityRPM))
}

func TestReportEncode(t *testing.T) {
	report := fans.Report{
		Select:       1,
		Capabilities: 3,
		Connection:   fans.ConnectionFourPin,
		DutyCycle:    100,
		RPM:          600,
		Mode:         fans.ModeDutyCycle,
		Voltage:      6400000,
		Current:      10000,
	}

	out := make([]byte, fans.ReportLength)
	require.NoError(t, report.Encode(out))
	assert.Equal(t, frame(), out)

	p, err := report.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, frame(), p)
}

func TestReportEncode_InvalidLength(t *testing.T) {
	var report fans.Report
	for _, n := range []int{0, 1, 16, 18, 64} {
		err := report.Encode(make([]byte, n))
		assert.ErrorIs(t, err, fans.ErrInvalidReportLength, "length %d", n)
	}
}

func TestReportRoundTrip(t *testing.T) {
	selects := []fans.Select{0, 1, 4, 0xFFFF}
	values := []uint32{0, 1, 0x7F, 0xFFFF, 0xFFFFFFFF}

	for c := fans.ConnectionNotConnected; c <= fans.ConnectionVirtual; c++ {
		for m := fans.ModeDisabled; m <= fans.ModeTemperatureCurve; m++ {
			for i, s := range selects {
				v := values[i%len(values)]
				report := fans.Report{
					Select:       s,
					Capabilities: fans.Capabilities(uint16(v)),
					Connection:   c,
					DutyCycle:    uint8(v),
					RPM:          uint16(v >> 1),
					Mode:         m,
					Voltage:      v,
					Current:      ^v,
				}

				p, err := report.MarshalBinary()
				require.NoError(t, err)
				require.Len(t, p, fans.ReportLength)

				var decoded fans.Report
				require.NoError(t, decoded.UnmarshalBinary(p))
				assert.Equal(t, report, decoded)
			}
		}
	}
}

func TestDecodeReport_InvalidLength(t *testing.T) {
	for n := 0; n <= 40; n++ {
		if n == fans.ReportLength {
			continue
		}

		data := bytes.Repeat([]byte{0x01}, n)
		_, err := fans.DecodeReport(data)
		assert.ErrorIs(t, err, fans.ErrInvalidReportLength, "length %d", n)
	}
}

func TestDecodeReport_InvalidConnection(t *testing.T) {
	for b := 4; b <= 0xFF; b++ {
		data := frame()
		data[4] = byte(b)

		_, err := fans.DecodeReport(data)
		assert.ErrorIs(t, err, fans.ErrInvalidConnectionValue, "connection byte %d", b)
	}
}

func TestDecodeReport_InvalidMode(t *testing.T) {
	for b := 5; b <= 0xFF; b++ {
		data := frame()
		data[8] = byte(b)

		_, err := fans.DecodeReport(data)
		assert.ErrorIs(t, err, fans.ErrInvalidModeValue, "mode byte %d", b)
	}
}

func TestDecodeReport_UncheckedDutyCycle(t *testing.T) {
	data := frame()
	data[5] = 0xFF

	report, err := fans.DecodeReport(data)
	require.NoError(t, err)
	assert.EqualValues(t, 255, report.DutyCycle)
}

func TestReportValidate(t *testing.T) {
	assert.NoError(t, fans.Report{}.Validate())
	assert.ErrorIs(t, fans.Report{Connection: 4}.Validate(), fans.ErrInvalidConnectionValue)
	assert.ErrorIs(t, fans.Report{Mode: 5}.Validate(), fans.ErrInvalidModeValue)
}
