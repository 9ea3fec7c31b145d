// Package report writes sweep results: the results CSV, per-task metric
// grids and heatmap images.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Noofbiz/ngramSweep/sweep"
)

// Header is the column layout of the results CSV.
var Header = []string{
	"task_number",
	"n",
	"confidence_threshold",
	"total_accuracy",
	"total_threshold_accuracy",
	"total_grams",
	"total_above_threshold",
}

func formatFloat(v float64) string {
	// shortest form that parses back to the same value; NaN is written as "NaN"
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteRows writes the header and rows as CSV to w.
func WriteRows(w io.Writer, rows []sweep.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Task,
			strconv.Itoa(r.N),
			formatFloat(r.Threshold),
			formatFloat(r.Accuracy),
			formatFloat(r.ThresholdAccuracy),
			strconv.Itoa(r.Grams),
			strconv.Itoa(r.AboveThreshold),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %s/%d/%v: %w", r.Task, r.N, r.Threshold, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes rows to path. It writes a temp file in the same directory
// and renames it over path, so readers never see a partial file.
func WriteCSV(path string, rows []sweep.Row) error {
	if path == "" {
		return fmt.Errorf("empty csv path")
	}
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp csv file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpName)
	}()

	if err := WriteRows(tmpFile, rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		log.Printf("warning: sync temp csv file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp csv file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp csv to target: %w", err)
	}
	return nil
}

// ReadCSV reads a results CSV written by WriteCSV. UndefinedFolds is not
// part of the file and is left zero.
func ReadCSV(path string) ([]sweep.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()
	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return rows, nil
}

// ReadRows parses CSV data in the Header layout.
func ReadRows(r io.Reader) ([]sweep.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}
	colIdx := make(map[string]int, len(Header))
	for i, name := range records[0] {
		colIdx[name] = i
	}
	for _, name := range Header {
		if _, ok := colIdx[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	rows := make([]sweep.Row, 0, len(records)-1)
	for line, rec := range records[1:] {
		row, err := parseRecord(rec, colIdx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(rec []string, colIdx map[string]int) (sweep.Row, error) {
	var (
		row sweep.Row
		err error
	)
	row.Task = rec[colIdx["task_number"]]
	if row.N, err = strconv.Atoi(rec[colIdx["n"]]); err != nil {
		return row, fmt.Errorf("parse n: %w", err)
	}
	if row.Threshold, err = strconv.ParseFloat(rec[colIdx["confidence_threshold"]], 64); err != nil {
		return row, fmt.Errorf("parse confidence_threshold: %w", err)
	}
	if row.Accuracy, err = strconv.ParseFloat(rec[colIdx["total_accuracy"]], 64); err != nil {
		return row, fmt.Errorf("parse total_accuracy: %w", err)
	}
	if row.ThresholdAccuracy, err = strconv.ParseFloat(rec[colIdx["total_threshold_accuracy"]], 64); err != nil {
		return row, fmt.Errorf("parse total_threshold_accuracy: %w", err)
	}
	if row.Grams, err = strconv.Atoi(rec[colIdx["total_grams"]]); err != nil {
		return row, fmt.Errorf("parse total_grams: %w", err)
	}
	if row.AboveThreshold, err = strconv.Atoi(rec[colIdx["total_above_threshold"]]); err != nil {
		return row, fmt.Errorf("parse total_above_threshold: %w", err)
	}
	return row, nil
}
