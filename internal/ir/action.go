package ir

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON produces JSON with a fixed field order for Result, so CLI
// output and golden fixtures are byte-stable regardless of struct layout
// changes. Mirrors the teacher's fixed-field-order marshaling idiom.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fields := []struct {
		key string
		val any
	}{
		{"name", r.Name},
		{"result_handle", r.ResultHandle},
		{"start_ordpos", r.StartOrdpos},
		{"end_ordpos", r.EndOrdpos},
		{"start_origseg", r.StartOrigseg},
		{"start_origpos", r.StartOrigpos},
		{"end_origseg", r.EndOrigseg},
		{"end_origpos", r.EndOrigpos},
	}
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		valBytes, err := json.Marshal(f.val)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON produces JSON with a fixed field order for ResultItem.
func (it ResultItem) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fields := []struct {
		key string
		val any
	}{
		{"variable_name", it.VariableName},
		{"ordpos", it.Ordpos},
		{"origseg", it.Origseg},
		{"origpos", it.Origpos},
		{"origsize", it.Origsize},
		{"weight", it.Weight},
	}
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		valBytes, err := json.Marshal(f.val)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
