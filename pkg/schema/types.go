package schema

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
)

// Type validates a single config value.
type Type interface {
	// Name is the type's textual form, accepted back by ParseType.
	Name() string
	Validate(value any) error
}

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

type intType struct{}

func (intType) Name() string { return "int" }

func (intType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// JSON numbers decode as float64.
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got fractional number")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

type floatType struct{}

func (floatType) Name() string { return "float" }

func (floatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// statusType accepts the textual form of a terminal status.
type statusType struct{}

func (statusType) Name() string { return "status" }

func (statusType) Validate(value any) error {
	switch v := value.(type) {
	case domain.Status:
		if !v.IsTerminal() {
			return fmt.Errorf("expected success or failed, got %s", v)
		}
		return nil
	case string:
		s, err := domain.ParseStatus(v)
		if err != nil {
			return err
		}
		if !s.IsTerminal() {
			return fmt.Errorf("expected success or failed, got %q", v)
		}
		return nil
	default:
		return fmt.Errorf("expected status string, got %T", value)
	}
}

type enumType struct {
	values []string
}

func (t enumType) Name() string { return "enum(" + strings.Join(t.values, "|") + ")" }

func (t enumType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if !slices.Contains(t.values, s) {
		return fmt.Errorf("expected one of %s, got %q", strings.Join(t.values, ", "), s)
	}
	return nil
}

type sliceType struct {
	elem Type
}

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type customType struct {
	name     string
	validate func(any) error
}

func (t customType) Name() string { return t.name }

func (t customType) Validate(value any) error { return t.validate(value) }

func String() Type { return stringType{} }
func Int() Type    { return intType{} }
func Float() Type  { return floatType{} }
func Bool() Type   { return boolType{} }

// Status accepts "success" or "failed" (and their aliases).
func Status() Type { return statusType{} }

// Enum accepts exactly one of values.
func Enum(values ...string) Type { return enumType{values: values} }

// Slice accepts a slice whose every element satisfies elem.
func Slice(elem Type) Type { return sliceType{elem: elem} }

// Custom wraps a validation function under a type name. Custom types do not
// survive ParseType.
func Custom(name string, validate func(any) error) Type {
	return customType{name: name, validate: validate}
}

// ParseType converts a type name back into a Type.
func ParseType(name string) (Type, error) {
	if len(name) > 2 && name[0] == '[' && name[len(name)-1] == ']' {
		elem, err := ParseType(name[1 : len(name)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}
	if inner, ok := strings.CutPrefix(name, "enum("); ok && strings.HasSuffix(inner, ")") {
		return Enum(strings.Split(strings.TrimSuffix(inner, ")"), "|")...), nil
	}
	switch name {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "status":
		return Status(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", name)
	}
}

// ParseTypeMap converts key -> type name pairs into a Schema.
func ParseTypeMap(types map[string]string) (Schema, error) {
	out := make(Schema, len(types))
	for key, name := range types {
		t, err := ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		out[key] = t
	}
	return out, nil
}
