package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/relic/internal/ncdm"
)

const (
	metadataFile = "metadata.json"
	tableFile    = "table.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type SpeciesMeta struct {
	ID         int     `json:"id"`
	Type       string  `json:"type"`
	Source     string  `json:"source"`
	MassEV     float64 `json:"mass_ev"`
	Degeneracy float64 `json:"degeneracy"`
	Omega0     float64 `json:"omega0"`
	DeltaNeff  float64 `json:"delta_neff"`
	Nodes      int     `json:"background_nodes"`
}

type RunMetadata struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	Timestamp time.Time     `json:"timestamp"`
	H         float64       `json:"h"`
	TCMB      float64       `json:"t_cmb"`
	Omega0    float64       `json:"omega0"`
	Neff      float64       `json:"neff"`
	Points    int           `json:"points"`
	Columns   []string      `json:"columns"`
	Species   []SpeciesMeta `json:"species"`
}

// Describe collects run metadata from a registry and its table.
func Describe(source string, r *ncdm.Registry, rows []Row) RunMetadata {
	settings := r.Settings()
	meta := RunMetadata{
		Source:    source,
		Timestamp: time.Now(),
		H:         settings.H,
		TCMB:      settings.TCMB,
		Omega0:    r.Omega0(),
		Neff:      r.Neff(),
		Points:    len(rows),
		Columns:   Header(rows),
	}
	for _, s := range r.Summaries() {
		meta.Species = append(meta.Species, SpeciesMeta{
			ID:         s.ID,
			Type:       s.Type.String(),
			Source:     s.Source,
			MassEV:     s.MassEV,
			Degeneracy: s.Degeneracy,
			Omega0:     s.Omega0,
			DeltaNeff:  s.DeltaNeff,
			Nodes:      s.BackgroundNodes,
		})
	}
	return meta
}

// Save writes metadata.json and table.csv under a fresh run id.
func (s *Store) Save(meta RunMetadata, rows []Row) (string, error) {
	meta.ID = uuid.NewString()
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, tableFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, rows); err != nil {
		return "", err
	}
	return meta.ID, csvFile.Sync()
}

// List returns saved runs, newest first. Unreadable run directories are
// skipped.
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTable reads back the header and numeric rows of a saved table.
func (s *Store) LoadTable(runID string) ([]string, [][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, tableFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, [][]float64{}, nil
	}

	values := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s row %d: %w", tableFile, i+1, err)
			}
			row[j] = v
		}
		values = append(values, row)
	}
	return records[0], values, nil
}
