package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/relic/internal/ncdm"
)

type Row = ncdm.Row

type column struct {
	name  string
	q     ncdm.Quantity
	value func(ncdm.Moments) float64
}

var columns = []column{
	{"n", ncdm.Number, func(m ncdm.Moments) float64 { return m.N }},
	{"rho", ncdm.Energy, func(m ncdm.Moments) float64 { return m.Rho }},
	{"p", ncdm.Pressure, func(m ncdm.Moments) float64 { return m.P }},
	{"drho_dm", ncdm.EnergyMassDerivative, func(m ncdm.Moments) float64 { return m.DRhoDM }},
	{"pseudo_p", ncdm.PseudoPressure, func(m ncdm.Moments) float64 { return m.PseudoP }},
	{"w", ncdm.Energy | ncdm.Pressure, func(m ncdm.Moments) float64 { return m.W() }},
}

func present(rows []Row) []column {
	if len(rows) == 0 || len(rows[0].Moments) == 0 {
		return nil
	}
	m := rows[0].Moments[0]
	var out []column
	for _, c := range columns {
		if m.Has(c.q) {
			out = append(out, c)
		}
	}
	return out
}

// Header names the table columns: z, then one block per species.
func Header(rows []Row) []string {
	header := []string{"z"}
	if len(rows) == 0 {
		return header
	}
	cols := present(rows)
	for id := range rows[0].Moments {
		for _, c := range cols {
			header = append(header, fmt.Sprintf("%s_%d", c.name, id))
		}
	}
	return header
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(rows)); err != nil {
		return err
	}
	cols := present(rows)
	for _, row := range rows {
		record := []string{format(row.Z)}
		for _, m := range row.Moments {
			for _, c := range cols {
				record = append(record, format(c.value(m)))
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Metadata RunMetadata `json:"metadata"`
	Columns  []string    `json:"columns"`
	Rows     [][]float64 `json:"rows"`
}

// ExportJSON writes the metadata and the table as one JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, rows []Row) error {
	cols := present(rows)
	data := ExportData{
		Metadata: meta,
		Columns:  Header(rows),
		Rows:     make([][]float64, len(rows)),
	}
	for i, row := range rows {
		values := []float64{row.Z}
		for _, m := range row.Moments {
			for _, c := range cols {
				values = append(values, c.value(m))
			}
		}
		data.Rows[i] = values
	}
	return writeExport(w, data)
}

// Export writes a saved run in the same JSON layout as ExportJSON.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	header, values, err := s.LoadTable(runID)
	if err != nil {
		return err
	}
	return writeExport(w, ExportData{Metadata: *meta, Columns: header, Rows: values})
}

func writeExport(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
