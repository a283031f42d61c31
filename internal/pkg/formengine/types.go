// Package formengine compiles section schemas into typed field sets and
// drives a value tree through hydrate, edit, validate and submit.
package formengine

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FieldType is the input kind of a field definition.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldURL      FieldType = "url"
	FieldDate     FieldType = "date"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldFile     FieldType = "file"
	FieldMultiple FieldType = "multiple"
)

// Known reports whether t is one of the supported field types.
func (t FieldType) Known() bool {
	switch t {
	case FieldText, FieldEmail, FieldURL, FieldDate, FieldNumber, FieldTextarea, FieldFile, FieldMultiple:
		return true
	}
	return false
}

// FieldDefinition is one slot of a section schema as stored by the schema builder.
type FieldDefinition struct {
	FeKey        string            `json:"feKey"`
	FieldLabel   string            `json:"fieldLabel"`
	FieldType    FieldType         `json:"fieldType"`
	IsRequired   bool              `json:"isRequired"`
	Validation   string            `json:"validation,omitempty"`
	MultipleData []FieldDefinition `json:"multipleData,omitempty"`
}

// Entry is one row of a repeatable group, keyed by sub-field feKey.
type Entry map[string]string

// Clone returns a copy of the entry.
func (e Entry) Clone() Entry {
	out := make(Entry, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Value holds either a scalar string or the ordered entries of a group.
// It encodes to a JSON string or a JSON array accordingly. Raw carries a
// stored value verbatim when its shape is not one the engine edits (objects,
// arrays of non-objects, bare numbers and booleans); it is written back
// unchanged until the slot is edited.
type Value struct {
	Text    string
	Entries []Entry
	IsGroup bool
	Raw     json.RawMessage
}

// TextValue returns a scalar value.
func TextValue(s string) Value { return Value{Text: s} }

// GroupValue returns a group value holding the given entries.
func GroupValue(entries ...Entry) Value {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Clone())
	}
	return Value{Entries: out, IsGroup: true}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	var raw json.RawMessage
	if v.Raw != nil {
		raw = append(json.RawMessage(nil), v.Raw...)
	}
	if !v.IsGroup {
		return Value{Text: v.Text, Raw: raw}
	}
	out := GroupValue(v.Entries...)
	out.Raw = raw
	return out
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Raw != nil {
		return v.Raw, nil
	}
	if !v.IsGroup {
		return json.Marshal(v.Text)
	}
	if v.Entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Entries)
}

// UnmarshalJSON accepts strings and arrays of objects. Numbers and booleans
// left behind by older editors keep their literal text; any other shape is
// kept verbatim in Raw.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}
	raw := append(json.RawMessage(nil), trimmed...)
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = Value{Text: s}
		return nil
	case '{':
		*v = Value{Raw: raw}
		return nil
	case '[':
	default:
		*v = Value{Text: scalarString(trimmed), Raw: raw}
		return nil
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		*v = Value{Raw: raw}
		return nil
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry := make(Entry, len(row))
		for k, rv := range row {
			entry[k] = scalarString(rv)
		}
		entries = append(entries, entry)
	}
	*v = Value{Entries: entries, IsGroup: true}
	return nil
}

func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return string(raw)
	}
	switch x := out.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	return string(raw)
}

// ValueTree maps feKey to the value bound to that slot.
type ValueTree map[string]Value

// Clone returns a deep copy of the tree.
func (t ValueTree) Clone() ValueTree {
	out := make(ValueTree, len(t))
	for k, v := range t {
		out[k] = v.Clone()
	}
	return out
}
