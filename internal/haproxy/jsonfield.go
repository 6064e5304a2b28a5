package haproxy

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// jsonItem is one entry of the typed field-list output produced by
// "show info json" and "show stat json".
type jsonItem struct {
	ObjType    string    `json:"objType,omitempty"`
	ProxyID    uint64    `json:"proxyId,omitempty"`
	ID         uint64    `json:"id,omitempty"`
	Field      jsonField `json:"field"`
	ProcessNum uint64    `json:"processNum"`
	Tags       jsonTags  `json:"tags"`
	Value      jsonValue `json:"value"`
}

type jsonField struct {
	Pos  int    `json:"pos"`
	Name string `json:"name"`
}

type jsonTags struct {
	Origin string `json:"origin"`
	Nature string `json:"nature"`
	Scope  string `json:"scope"`
}

// jsonValue is a {"type": ..., "value": ...} pair. V holds an int64, uint64,
// float64 or string depending on the wire type.
type jsonValue struct {
	Type string
	V    any
}

func (v *jsonValue) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var err error
	switch raw.Type {
	case "s32", "s64":
		var n int64
		err = json.Unmarshal(raw.Value, &n)
		v.V = n
	case "u32", "u64":
		var n uint64
		err = json.Unmarshal(raw.Value, &n)
		v.V = n
	case "flt":
		var f float64
		err = json.Unmarshal(raw.Value, &f)
		v.V = f
	case "str":
		var s string
		err = json.Unmarshal(raw.Value, &s)
		v.V = s
	default:
		return fmt.Errorf("unknown value type %q", raw.Type)
	}
	if err != nil {
		return fmt.Errorf("value of type %s: %w", raw.Type, err)
	}
	v.Type = raw.Type
	return nil
}

// String returns the value in its decimal or literal textual form.
func (v jsonValue) String() string {
	switch n := v.V.(type) {
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		return n
	default:
		return ""
	}
}

// pivot turns a field list into a name-keyed attribute map. The role
// discriminant "type" is kept in textual form so it dispatches the same way
// as a CSV cell.
func pivot(items []jsonItem) map[string]any {
	attrs := make(map[string]any, len(items))
	for _, it := range items {
		if it.Field.Name == "type" {
			attrs[it.Field.Name] = it.Value.String()
			continue
		}
		attrs[it.Field.Name] = it.Value.V
	}
	return attrs
}
