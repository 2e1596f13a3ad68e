package domain

import "encoding/json"

// StringList models a JSON-encoded list stored in a text column.
// Rows written by earlier versions of the system sometimes hold plain
// text instead of JSON; those decode into Raw and are re-emitted as a
// JSON string rather than failing the whole read.
type StringList struct {
	Items []string
	Raw   string
}

// ParseStringList decodes a stored column value. An empty column yields
// the zero value; invalid JSON is preserved verbatim in Raw.
func ParseStringList(s string) StringList {
	if s == "" {
		return StringList{}
	}
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return StringList{Raw: s}
	}
	return StringList{Items: items}
}

// Encode returns the text to store. Raw values round-trip untouched.
func (l StringList) Encode() string {
	if l.Raw != "" {
		return l.Raw
	}
	if len(l.Items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(l.Items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l.Raw != "" {
		return json.Marshal(l.Raw)
	}
	if l.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Items)
}

func (l *StringList) UnmarshalJSON(b []byte) error {
	var items []string
	if err := json.Unmarshal(b, &items); err == nil {
		*l = StringList{Items: items}
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err == nil {
		*l = ParseStringList(raw)
		return nil
	}
	*l = StringList{Raw: string(b)}
	return nil
}

// JSONObject models a JSON-encoded object stored in a text column, with
// the same raw-fallback policy as StringList.
type JSONObject struct {
	Fields map[string]any
	Raw    string
}

func ParseJSONObject(s string) JSONObject {
	if s == "" {
		return JSONObject{}
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return JSONObject{Raw: s}
	}
	return JSONObject{Fields: fields}
}

func (o JSONObject) Encode() string {
	if o.Raw != "" {
		return o.Raw
	}
	if len(o.Fields) == 0 {
		return "{}"
	}
	b, err := json.Marshal(o.Fields)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Merge shallow-merges the given fields into the object. A raw
// (unparseable) value is discarded in favor of the incoming fields,
// since there is nothing structured to merge into.
func (o JSONObject) Merge(fields map[string]any) JSONObject {
	merged := make(map[string]any, len(o.Fields)+len(fields))
	for k, v := range o.Fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return JSONObject{Fields: merged}
}

func (o JSONObject) MarshalJSON() ([]byte, error) {
	if o.Raw != "" {
		return json.Marshal(o.Raw)
	}
	if o.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(o.Fields)
}

func (o *JSONObject) UnmarshalJSON(b []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err == nil {
		*o = JSONObject{Fields: fields}
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err == nil {
		*o = ParseJSONObject(raw)
		return nil
	}
	*o = JSONObject{Raw: string(b)}
	return nil
}
