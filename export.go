package mrs

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVHeader is the column layout written by [Result.WriteCSV].
var CSVHeader = []string{"ppm", "echo1", "echo2", "diff", "sum"}

// WriteCSV writes the mean spectra as one row per ppm bin.
func (r *Result) WriteCSV(w io.Writer) error {
	return r.Spectra.WriteCSV(w)
}

// WriteCSV writes the ppm axis with the mean echo1, echo2, difference and
// sum spectra.
func (s *Spectra) WriteCSV(w io.Writer) error {
	columns := [][]float64{s.PPM, Mean(s.Echo1), Mean(s.Echo2), Mean(s.Diff), Mean(s.Sum)}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(columns))
	for i := range s.PPM {
		for j, col := range columns {
			v := 0.0
			if i < len(col) {
				v = col[i]
			}
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
