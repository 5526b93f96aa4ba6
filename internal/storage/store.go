package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/cosmosim/internal/result"
)

const (
	metadataFile = "metadata.json"
	resultsFile  = "results.csv"
)

// ErrRunNotFound indicates no stored run has the requested ID.
var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	Timestamp  time.Time               `json:"timestamp"`
	Integrator string                  `json:"integrator"`
	Dt         float64                 `json:"dt"`
	Duration   float64                 `json:"duration"`
	Params     map[string]float64      `json:"params,omitempty"`
	Initial    result.SimulationResult `json:"initial"`
	Final      result.SimulationResult `json:"final"`
	Records    int                     `json:"records"`
	Metrics    map[string]float64      `json:"metrics"`
}

// Save stores a run's records and fills in ID, Timestamp, Initial, Final and Records.
func (s *Store) Save(meta RunMetadata, records []result.SimulationResult) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("storage: refusing to save a run without records")
	}

	meta.ID = fmt.Sprintf("%s_%s", meta.Model, uuid.NewString()[:8])
	meta.Timestamp = time.Now()
	meta.Initial = records[0]
	meta.Final = records[len(records)-1]
	meta.Records = len(records)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := result.WriteSeriesFile(filepath.Join(runDir, resultsFile), records); err != nil {
		return "", err
	}

	err := result.WriteFileAtomic(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable run, newest first. Unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadResults(runID string) ([]result.SimulationResult, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, resultsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return result.ReadSeriesCSV(file)
}
