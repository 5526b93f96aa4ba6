package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SeriesHeader is the header row of a multi-record series CSV.
var SeriesHeader = []string{"Time", "Density", "Energy", "Expansion", "Gravitation"}

// WriteCSVLine replaces the file at path with the single headerless CSV line for r.
func WriteCSVLine(path string, r SimulationResult) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(r.record()); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	})
}

// WriteJSON replaces the file at path with results as an indented JSON array.
func WriteJSON(path string, results []SimulationResult) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return EncodeJSON(w, results)
	})
}

// EncodeJSON writes results as an indented JSON array. A nil slice encodes as [].
func EncodeJSON(w io.Writer, results []SimulationResult) error {
	if results == nil {
		results = []SimulationResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// WriteSeriesCSV writes a header row followed by one row per record.
func WriteSeriesCSV(w io.Writer, results []SimulationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SeriesHeader); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeriesFile replaces the file at path with a series CSV.
func WriteSeriesFile(path string, results []SimulationResult) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return WriteSeriesCSV(w, results)
	})
}

// ReadSeriesCSV parses a series CSV written by WriteSeriesCSV.
func ReadSeriesCSV(r io.Reader) ([]SimulationResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(SeriesHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header row", ErrDecode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(h), SeriesHeader[i]) {
			return nil, fmt.Errorf("%w: unexpected column %q, want %q", ErrDecode, h, SeriesHeader[i])
		}
	}

	results := make([]SimulationResult, 0)
	for index := 0; ; index++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}

		var fields [5]float64
		for i, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, &DecodeError{Index: index, Field: FieldNames[i], Err: fmt.Errorf("%w: %q", ErrNotNumeric, cell)}
			}
			fields[i] = v
		}
		results = append(results, FromFields(fields))
	}
	return results, nil
}

// WriteFileAtomic writes through a temp file in the target directory and
// renames it over path, so readers see either the old or the new content.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}
