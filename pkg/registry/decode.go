package registry

import (
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/domain"
)

var (
	statusType = reflect.TypeOf(domain.Status(0))
	modeType   = reflect.TypeOf(bt.ParallelMode(0))
)

// decodeConfig decodes a node config map. Numbers are decoded weakly because
// JSON trees deliver every number as float64.
func decodeConfig(config map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.DecodeHookFuncType(stringToStatus),
			mapstructure.DecodeHookFuncType(stringToParallelMode),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(config)
}

func stringToStatus(from, to reflect.Type, data any) (any, error) {
	if to != statusType || from.Kind() != reflect.String {
		return data, nil
	}
	return domain.ParseStatus(reflect.ValueOf(data).String())
}

func stringToParallelMode(from, to reflect.Type, data any) (any, error) {
	if to != modeType || from.Kind() != reflect.String {
		return data, nil
	}
	return bt.ParseParallelMode(reflect.ValueOf(data).String())
}
