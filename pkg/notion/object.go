package notion

import "time"

// Object is a raw payload as returned by the remote API. Nested objects are
// map[string]any and arrays are []any, exactly as decoded from JSON.
type Object map[string]any

// ID returns the object's "id" field.
func (o Object) ID() string {
	return o.String("id")
}

// Kind returns the raw kind of the object: the "type" field for blocks, the
// "object" field for pages and databases.
func (o Object) Kind() string {
	if t := o.String("type"); t != "" {
		return t
	}
	return o.String("object")
}

// String returns the string stored under key, or "" when absent or not a string.
func (o Object) String(key string) string {
	if o == nil {
		return ""
	}
	s, _ := o[key].(string)
	return s
}

// Map returns the nested object stored under key.
func (o Object) Map(key string) (Object, bool) {
	if o == nil {
		return nil, false
	}
	switch m := o[key].(type) {
	case map[string]any:
		return Object(m), true
	case Object:
		return m, true
	}
	return nil, false
}

// Slice returns the array stored under key.
func (o Object) Slice(key string) ([]any, bool) {
	if o == nil {
		return nil, false
	}
	s, ok := o[key].([]any)
	return s, ok
}

// Time parses an RFC 3339 timestamp stored under key. The zero time is
// returned when the field is absent or malformed.
func (o Object) Time(key string) time.Time {
	t, err := time.Parse(time.RFC3339, o.String(key))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Clone returns a deep copy of the object.
func (o Object) Clone() Object {
	if o == nil {
		return nil
	}
	return Object(cloneValue(map[string]any(o)).(map[string]any))
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case Object:
		return cloneValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// ChildrenPage is one page of a cursor-based listing.
type ChildrenPage struct {
	Results    []Object
	NextCursor string
	HasMore    bool
}
