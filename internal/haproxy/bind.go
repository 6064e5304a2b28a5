package haproxy

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-viper/mapstructure/v2"
	"github.com/xhit/go-str2duration/v2"
)

// bindTag is the struct tag naming the wire field a record field binds to.
// Pointer fields and fields tagged omitempty are optional unless also tagged
// required; all others must be present in the attribute map. An empty text
// value counts as absent unless the field is string-kinded.
const bindTag = "stat"

// ErrMissingField is wrapped by binding errors for absent required fields.
var ErrMissingField = errors.New("missing field")

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
	versionType  = reflect.TypeOf(semver.Version{})
)

// bind converts a name-keyed attribute map into T. Keys not known to T are
// ignored.
func bind[T any](attrs map[string]any) (T, error) {
	var out T
	attrs = dropEmptyValues(reflect.TypeOf(out), attrs)
	for _, name := range requiredFields(reflect.TypeOf(out)) {
		if _, ok := attrs[name]; !ok {
			return out, fmt.Errorf("%w %q", ErrMissingField, name)
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(convertWireValue),
		TagName:    bindTag,
		Result:     &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(attrs); err != nil {
		return out, err
	}
	return out, nil
}

// dropEmptyValues returns a copy of attrs without the empty strings bound to
// fields of t that are not string-kinded.
func dropEmptyValues(t reflect.Type, attrs map[string]any) map[string]any {
	kept := make(map[string]any, len(attrs))
	for k, v := range attrs {
		kept[k] = v
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get(bindTag), ",")
		if name == "" || name == "-" || f.Type.Kind() == reflect.String {
			continue
		}
		if s, ok := kept[name].(string); ok && s == "" {
			delete(kept, name)
		}
	}
	return kept
}

func requiredFields(t reflect.Type) []string {
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get(bindTag)
		if tag == "" || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		optional := f.Type.Kind() == reflect.Pointer || strings.Contains(opts, "omitempty")
		if optional && !strings.Contains(opts, "required") {
			continue
		}
		names = append(names, name)
	}
	return names
}

// convertWireValue turns textual wire values into the record's field types.
func convertWireValue(from, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok {
		return data, nil
	}

	switch to {
	case durationType:
		return parseUptime(s)
	case timeType:
		return time.Parse(time.DateOnly, s)
	case versionType:
		v, err := semver.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("parsing version %q: %w", s, err)
		}
		return *v, nil
	}

	switch to.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(s, 10, to.Bits())
	}
	return data, nil
}

// parseUptime parses durations such as "2d 3h04m05s".
func parseUptime(s string) (time.Duration, error) {
	d, err := str2duration.ParseDuration(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", s, err)
	}
	return d, nil
}
