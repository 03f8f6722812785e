package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Schema maps config keys to their types.
type Schema map[string]Type

// Keys returns the schema's keys in sorted order.
func (s Schema) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Validate requires every schema key to be present in data with a valid value.
// Keys in data the schema does not name are ignored. An empty schema accepts anything.
func Validate(s Schema, data map[string]any) error {
	var errs []error
	for _, key := range s.Keys() {
		value, ok := data[key]
		if !ok {
			errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			continue
		}
		if err := s[key].Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}
	return aggregate(errs)
}

// ValidatePartial checks the keys present in data and rejects keys the schema
// does not define. Missing keys are allowed.
func ValidatePartial(s Schema, data map[string]any) error {
	var errs []error
	for _, key := range slices.Sorted(maps.Keys(data)) {
		value := data[key]
		typ, ok := s[key]
		if !ok {
			errs = append(errs, &ValidationError{Key: key, Reason: "unknown key"})
			continue
		}
		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}
	return aggregate(errs)
}

func aggregate(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}

// MarshalJSON encodes the schema as key -> type name.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	raw := make(map[string]string, len(s))
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
		raw[key] = typ.Name()
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes key -> type name pairs through ParseTypeMap.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	parsed, err := ParseTypeMap(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
