package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// ErrMalformedRows is returned when a payload is not a JSON array of objects.
var ErrMalformedRows = errors.New("malformed row set")

var rowJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Row is one record of a dataset: a flat mapping from column name to cell
// value that remembers the order its keys were first inserted in.
//
// Values are whatever the JSON codec produced: string, json.Number, bool,
// nil, or jsoniter.RawMessage for nested arrays and objects.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow builds a row from alternating key/value arguments.
// It panics on an odd argument count or a non-string key; it is meant for
// literals in code and tests.
func NewRow(kv ...any) Row {
	if len(kv)%2 != 0 {
		panic("core.NewRow: odd number of arguments")
	}
	var r Row
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("core.NewRow: key %v is not a string", kv[i]))
		}
		r.Set(key, kv[i+1])
	}
	return r
}

// Set stores value under key. A new key is appended to the key order; an
// existing key keeps its position.
func (r *Row) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r Row) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether the row contains key.
func (r Row) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Keys returns the column names in insertion order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns in the row.
func (r Row) Len() int {
	return len(r.keys)
}

// Cell returns the display text for key; missing keys render as "".
func (r Row) Cell(key string) string {
	v, ok := r.values[key]
	if !ok {
		return ""
	}
	return FormatCell(v)
}

// Clone returns a deep copy of the key order and a shallow copy of values.
func (r Row) Clone() Row {
	out := Row{
		keys:   r.Keys(),
		values: make(map[string]any, len(r.values)),
	}
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// FormatCell renders a cell value the way the table displays it.
// Strings and numbers render as text, booleans and null render empty,
// nested values render as compact JSON.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case jsoniter.RawMessage:
		return string(val)
	default:
		b, err := rowJSON.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// MarshalJSON encodes the row as a JSON object with keys in insertion order.
func (r Row) MarshalJSON() ([]byte, error) {
	stream := rowJSON.BorrowStream(nil)
	defer rowJSON.ReturnStream(stream)

	r.writeTo(stream)
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// UnmarshalJSON decodes a JSON object, keeping its key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	iter := rowJSON.BorrowIterator(data)
	defer rowJSON.ReturnIterator(iter)

	row, err := readRow(iter)
	if err != nil {
		return err
	}
	*r = row
	return nil
}

func (r Row) writeTo(stream *jsoniter.Stream) {
	stream.WriteObjectStart()
	for i, k := range r.keys {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(k)
		stream.WriteVal(r.values[k])
	}
	stream.WriteObjectEnd()
}

// DecodeRows parses a JSON array of objects into rows, preserving the order of
// both the array and each object's keys.
func DecodeRows(data []byte) ([]Row, error) {
	iter := rowJSON.BorrowIterator(data)
	defer rowJSON.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ArrayValue {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedRows)
	}

	rows := []Row{}
	var rowErr error
	iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		row, err := readRow(it)
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", len(rows), err)
			return false
		}
		rows = append(rows, row)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRows, iter.Error)
	}
	// Only whitespace may follow the array.
	if iter.WhatIsNext() != jsoniter.InvalidValue || iter.Error != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after array", ErrMalformedRows)
	}
	return rows, nil
}

// EncodeRows writes rows to w as a JSON array.
func EncodeRows(w io.Writer, rows []Row) error {
	stream := jsoniter.NewStream(rowJSON, w, 4096)
	stream.WriteArrayStart()
	for i, row := range rows {
		if i > 0 {
			stream.WriteMore()
		}
		row.writeTo(stream)
	}
	stream.WriteArrayEnd()
	if stream.Error != nil {
		return stream.Error
	}
	return stream.Flush()
}

func readRow(iter *jsoniter.Iterator) (Row, error) {
	if iter.WhatIsNext() != jsoniter.ObjectValue {
		iter.Skip()
		return Row{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedRows)
	}

	row := Row{values: map[string]any{}}
	var valErr error
	iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		v, err := readValue(it)
		if err != nil {
			valErr = err
			return false
		}
		row.Set(field, v)
		return true
	})
	if valErr != nil {
		return Row{}, valErr
	}
	if iter.Error != nil && iter.Error != io.EOF {
		return Row{}, fmt.Errorf("%w: %v", ErrMalformedRows, iter.Error)
	}
	return row, nil
}

func readValue(iter *jsoniter.Iterator) (any, error) {
	switch iter.WhatIsNext() {
	case jsoniter.StringValue:
		return iter.ReadString(), nil
	case jsoniter.NumberValue:
		return iter.ReadNumber(), nil
	case jsoniter.BoolValue:
		return iter.ReadBool(), nil
	case jsoniter.NilValue:
		iter.ReadNil()
		return nil, nil
	case jsoniter.ArrayValue, jsoniter.ObjectValue:
		raw := iter.SkipAndReturnBytes()
		return jsoniter.RawMessage(append([]byte(nil), raw...)), nil
	default:
		iter.Skip()
		return nil, fmt.Errorf("%w: invalid value", ErrMalformedRows)
	}
}
