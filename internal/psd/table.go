package psd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadTable parses two whitespace-separated columns (q, f0). Blank lines
// and lines starting with '#' are skipped; extra columns are ignored.
func ReadTable(r io.Reader) ([]float64, []float64, error) {
	var q, f0 []float64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("line %d: expected 2 columns, got %d", line, len(fields))
		}
		qv, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		fv, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		q = append(q, qv)
		f0 = append(f0, fv)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return q, f0, nil
}

// ReadTableFile loads a tabulated distribution from disk.
func ReadTableFile(path string) (*Tabulated, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	q, f0, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t, err := NewTabulated(q, f0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
