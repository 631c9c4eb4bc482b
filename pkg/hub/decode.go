package hub

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// decodePlugin normalizes one wire-format plugin entry into the canonical
// record. The hub API's author field changed shape across generations (a
// bare login string, later a structured contributor), so entries are
// decoded from untyped maps with a hook that accepts both.
func decodePlugin(raw map[string]interface{}) (Plugin, error) {
	var p Plugin
	if err := decode(raw, &p); err != nil {
		return Plugin{}, fmt.Errorf("failed to decode plugin: %w", err)
	}
	return p, nil
}

func decodeDetail(raw map[string]interface{}) (Detail, error) {
	var d Detail
	if err := decode(raw, &d); err != nil {
		return Detail{}, fmt.Errorf("failed to decode plugin detail: %w", err)
	}
	return d, nil
}

func decode(raw map[string]interface{}, result interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			authorHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           result,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	return dec.Decode(raw)
}

// authorHook maps a legacy plain-login author onto the structured
// contributor record. Structured authors pass through untouched.
func authorHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(Contributor{}) || from.Kind() != reflect.String {
		return data, nil
	}

	login, ok := data.(string)
	if !ok {
		return data, nil
	}

	return Contributor{
		Login: login,
		URL:   "https://github.com/" + login,
	}, nil
}
