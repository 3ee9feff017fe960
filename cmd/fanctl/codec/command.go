package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mdouchement/fans"
	"github.com/mdouchement/fans/serialize"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"
)

func EncodeCommand() *cobra.Command {
	var (
		r          fans.Report
		connection string
		mode       string
		asCBOR     bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a fan report into its hexadecimal wire frame",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			if err := r.Connection.UnmarshalText([]byte(connection)); err != nil {
				return err
			}
			if err := r.Mode.UnmarshalText([]byte(mode)); err != nil {
				return err
			}

			p, err := Encode(r, asCBOR)
			if err != nil {
				return err
			}

			fmt.Println(hex.EncodeToString(p))
			return nil
		},
	}
	cmd.Flags().Uint16VarP((*uint16)(&r.Select), "select", "s", 1, "Fan select (1-based)")
	cmd.Flags().Uint16VarP((*uint16)(&r.Capabilities), "capabilities", "", 0, "Capabilities bitmask")
	cmd.Flags().StringVarP(&connection, "connection", "", fans.ConnectionNotConnected.String(), "not_connected, three_pin, four_pin or virtual")
	cmd.Flags().Uint8VarP(&r.DutyCycle, "duty-cycle", "d", 0, "Duty cycle in percent")
	cmd.Flags().Uint16VarP(&r.RPM, "rpm", "r", 0, "RPM")
	cmd.Flags().StringVarP(&mode, "mode", "m", fans.ModeDisabled.String(), "disabled, duty_cycle, rpm, temperature or temperature_curve")
	cmd.Flags().Uint32VarP(&r.Voltage, "voltage", "", 0, "Voltage in mV")
	cmd.Flags().Uint32VarP(&r.Current, "current", "", 0, "Current in mA")
	cmd.Flags().BoolVarP(&asCBOR, "cbor", "", false, "Encode as CBOR instead of the wire frame")

	return cmd
}

func DecodeCommand() *cobra.Command {
	var format string
	var fromCBOR bool

	cmd := &cobra.Command{
		Use:   "decode HEX",
		Short: "Decode a hexadecimal wire frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			r, err := Decode(args[0], fromCBOR)
			if err != nil {
				return err
			}

			return Print(os.Stdout, format, r)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	cmd.Flags().BoolVarP(&fromCBOR, "cbor", "", false, "Input is CBOR instead of the wire frame")

	return cmd
}

func SchemaCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema of the fan types",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return Print(os.Stdout, format, serialize.Schemas())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")

	return cmd
}

func Encode(r fans.Report, asCBOR bool) ([]byte, error) {
	if asCBOR {
		return serialize.MarshalCBOR(r)
	}
	return r.MarshalBinary()
}

// Decode accepts hexadecimal with optional spaces, colons or 0x prefix.
func Decode(s string, fromCBOR bool) (fans.Report, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)

	p, err := hex.DecodeString(s)
	if err != nil {
		return fans.Report{}, fmt.Errorf("hex: %w", err)
	}

	if fromCBOR {
		return serialize.UnmarshalCBOR(p)
	}
	return fans.DecodeReport(p)
}

func Print(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		codec := yaml.NewEncoder(w)
		if err := codec.Encode(v); err != nil {
			codec.Close()
			return err
		}
		return codec.Close()
	case "json":
		codec := json.NewEncoder(w)
		codec.SetIndent("", "  ")
		return codec.Encode(v)
	default:
		return fmt.Errorf("unsupported format %s", format)
	}
}
