package avatar

import (
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC1123,
}

func decode(raw map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       timestampHook,
		Result:           target,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(raw)
}

// timestampHook turns provider timestamp strings into time.Time. Unknown
// formats decode to the zero time rather than failing the whole response.
func timestampHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}

	if from.Kind() != reflect.String {
		return time.Time{}, nil
	}

	return parseTimestamp(data.(string)), nil
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}

	return time.Time{}
}
