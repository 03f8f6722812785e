package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/canopy/pkg/domain"
)

func TestTypes(t *testing.T) {
	tests := []struct {
		typ  Type
		ok   []any
		fail []any
	}{
		{String(), []any{"", "x"}, []any{1, true, nil}},
		{Int(), []any{1, int64(2), uint8(3), float64(4)}, []any{4.5, "4", nil}},
		{Float(), []any{1.5, 2}, []any{"1.5", false}},
		{Bool(), []any{true, false}, []any{"true", 0}},
		{Status(), []any{"success", "failed", "ok", "failure", domain.StatusFailed}, []any{"running", "invalid", "bogus", 1, domain.StatusRunning}},
		{Enum("skip", "restart"), []any{"skip", "restart"}, []any{"both", 1}},
		{Slice(String()), []any{[]string{"a"}, []any{"a", "b"}, []any{}}, []any{"a", []any{"a", 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.typ.Name(), func(t *testing.T) {
			for _, v := range tt.ok {
				assert.NoError(t, tt.typ.Validate(v), "%v", v)
			}
			for _, v := range tt.fail {
				assert.Error(t, tt.typ.Validate(v), "%v", v)
			}
		})
	}
}

func TestCustom(t *testing.T) {
	positive := Custom("positive", func(v any) error {
		if n, ok := v.(int); ok && n > 0 {
			return nil
		}
		return errors.New("must be a positive int")
	})
	assert.Equal(t, "positive", positive.Name())
	assert.NoError(t, positive.Validate(3))
	assert.Error(t, positive.Validate(-3))
}

func TestParseType(t *testing.T) {
	for _, name := range []string{"string", "int", "float", "bool", "status", "[int]", "[[string]]", "enum(skip|restart)"} {
		typ, err := ParseType(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, typ.Name())
	}

	_, err := ParseType("map")
	assert.Error(t, err)
	_, err = ParseType("[map]")
	assert.Error(t, err)
}

func TestValidate_RequiresEveryKey(t *testing.T) {
	s := Schema{"ticks": Int(), "result": Status()}

	assert.NoError(t, Validate(s, map[string]any{"ticks": 2, "result": "failed", "extra": true}))

	err := Validate(s, map[string]any{"result": "running"})
	errs := ValidationErrors(err)
	require.Len(t, errs, 2)

	var first *ValidationError
	require.ErrorAs(t, errs[0], &first)
	assert.Equal(t, "result", first.Key)
	assert.Contains(t, err.Error(), `field "ticks": required`)
}

func TestValidatePartial(t *testing.T) {
	s := Schema{"ticks": Int(), "result": Status()}

	assert.NoError(t, ValidatePartial(s, nil))
	assert.NoError(t, ValidatePartial(s, map[string]any{"ticks": 1}))

	err := ValidatePartial(s, map[string]any{"tick": 1, "result": 7})
	errs := ValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "result")
	assert.Contains(t, errs[1].Error(), "unknown key")
	assert.Contains(t, err.Error(), "2 validation errors")
}

func TestValidationErrors_NotAggregate(t *testing.T) {
	assert.Nil(t, ValidationErrors(errors.New("plain")))
	assert.Nil(t, ValidationErrors(nil))
}

func TestSchema_JSON(t *testing.T) {
	s := Schema{"times": Int(), "mode": Enum("skip", "restart"), "tags": Slice(String())}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"times":"int","mode":"enum(skip|restart)","tags":"[string]"}`, string(data))

	var back Schema
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.Keys(), back.Keys())
	assert.Error(t, back["mode"].Validate("both"))

	assert.Error(t, json.Unmarshal([]byte(`{"x":"map"}`), &back))
}
