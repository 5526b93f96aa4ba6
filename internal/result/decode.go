package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Load reads the JSON results file at path and decodes it.
// A missing or unreadable file wraps ErrNotFound; anything else wraps ErrDecode.
func Load(path string) ([]SimulationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	return DecodeBytes(data)
}

// Decode reads all of r and decodes it as a JSON array of result records.
func Decode(r io.Reader) ([]SimulationResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes a JSON array of objects. Field names are matched
// exactly and every field must hold a JSON number.
func DecodeBytes(data []byte) ([]SimulationResult, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrDecode)
	}

	results := make([]SimulationResult, 0, len(raw))
	for i, elem := range raw {
		r, err := decodeRecord(i, elem)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

var jsonNull = []byte("null")

func decodeRecord(index int, elem json.RawMessage) (SimulationResult, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(elem, &obj); err != nil {
		return SimulationResult{}, &DecodeError{Index: index, Err: err}
	}
	if obj == nil {
		return SimulationResult{}, &DecodeError{Index: index, Err: fmt.Errorf("record is null")}
	}

	var fields [5]float64
	for i, name := range FieldNames {
		v, ok := obj[name]
		if !ok {
			return SimulationResult{}, &DecodeError{Index: index, Field: name, Err: ErrMissingField}
		}
		if bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			return SimulationResult{}, &DecodeError{Index: index, Field: name, Err: ErrNotNumeric}
		}
		if err := json.Unmarshal(v, &fields[i]); err != nil {
			return SimulationResult{}, &DecodeError{Index: index, Field: name, Err: fmt.Errorf("%w: %s", ErrNotNumeric, v)}
		}
	}
	return FromFields(fields), nil
}
