package serialize

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mdouchement/fans"
)

var ErrUnsupportedType = errors.New("unsupported type")

// Schema is a self-describing view of a fan type.
type Schema struct {
	Name     string    `json:"name" yaml:"name"`
	Kind     string    `json:"kind" yaml:"kind"`
	Size     int       `json:"size,omitempty" yaml:"size,omitempty"`
	Fields   []Field   `json:"fields,omitempty" yaml:"fields,omitempty"`
	Variants []Variant `json:"variants,omitempty" yaml:"variants,omitempty"`
}

type Field struct {
	Name   string `json:"name" yaml:"name"`
	Key    int    `json:"key" yaml:"key"`       // CBOR key
	Offset int    `json:"offset" yaml:"offset"` // wire offset
	Schema Schema `json:"schema" yaml:"schema"`
}

type Variant struct {
	Name    string  `json:"name" yaml:"name"`
	Value   int     `json:"value" yaml:"value"`
	Payload *Schema `json:"payload,omitempty" yaml:"payload,omitempty"`
}

const (
	KindUnsigned    = "unsigned"
	KindEnum        = "enum"
	KindStruct      = "struct"
	KindTaggedUnion = "tagged_union"
)

var (
	typeConnection = reflect.TypeFor[fans.Connection]()
	typeMode       = reflect.TypeFor[fans.Mode]()
	typeControl    = reflect.TypeFor[fans.Control]()
	typeReport     = reflect.TypeFor[fans.Report]()
)

// SchemaOf describes the type of v.
func SchemaOf(v any) (Schema, error) {
	if v == nil {
		return Schema{}, ErrUnsupportedType
	}
	return schemaOf(reflect.TypeOf(v))
}

// Schemas describes every public wire type.
func Schemas() []Schema {
	values := []any{fans.Select(0), fans.Connection(0), fans.Mode(0), fans.Control{}, fans.Report{}}

	schemas := make([]Schema, 0, len(values))
	for _, v := range values {
		s, _ := SchemaOf(v) // All supported
		schemas = append(schemas, s)
	}

	return schemas
}

func schemaOf(t reflect.Type) (Schema, error) {
	switch t {
	case typeConnection:
		return enum(t, func(b byte) (string, bool) {
			c := fans.Connection(b)
			return c.String(), c.Valid()
		}), nil
	case typeMode:
		return enum(t, func(b byte) (string, bool) {
			m := fans.Mode(b)
			return m.String(), m.Valid()
		}), nil
	case typeControl:
		u8, u16 := unsigned(reflect.TypeFor[uint8]()), unsigned(reflect.TypeFor[uint16]())
		return Schema{
			Name: t.Name(),
			Kind: KindTaggedUnion,
			Variants: []Variant{
				{Name: fans.ControlDutyCycle.String(), Value: int(fans.ControlDutyCycle), Payload: &u8},
				{Name: fans.ControlRPM.String(), Value: int(fans.ControlRPM), Payload: &u16},
			},
		}, nil
	case typeReport:
		return record(t)
	}

	switch t.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return unsigned(t), nil
	}

	return Schema{}, fmt.Errorf("%s: %w", t, ErrUnsupportedType)
}

func unsigned(t reflect.Type) Schema {
	return Schema{
		Name: t.Name(),
		Kind: KindUnsigned,
		Size: int(t.Size()),
	}
}

// Variants are contiguous from 0.
func enum(t reflect.Type, variant func(byte) (string, bool)) Schema {
	s := Schema{
		Name: t.Name(),
		Kind: KindEnum,
		Size: int(t.Size()),
	}

	for b := range 0x100 {
		name, ok := variant(byte(b))
		if !ok {
			break
		}
		s.Variants = append(s.Variants, Variant{Name: name, Value: b})
	}

	return s
}

// Fields are laid out on the wire in declaration order with their natural width.
func record(t reflect.Type) (Schema, error) {
	s := Schema{
		Name: t.Name(),
		Kind: KindStruct,
	}

	for i := range t.NumField() {
		f := t.Field(i)

		fs, err := schemaOf(f.Type)
		if err != nil {
			return Schema{}, fmt.Errorf("%s: %w", f.Name, err)
		}

		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" {
			name = f.Name
		}

		s.Fields = append(s.Fields, Field{
			Name:   name,
			Key:    i + 1,
			Offset: s.Size,
			Schema: fs,
		})
		s.Size += int(f.Type.Size())
	}

	return s, nil
}
