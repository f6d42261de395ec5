package exam

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportColumns is the stable header of the results export.
var ExportColumns = []string{"student_id", "evaluation_name", "score", "percentage", "completed_at"}

const exportTimeLayout = "2006-01-02 15:04"

// WriteResultsCSV writes one row per result, in catalog order.
func WriteResultsCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.StudentID,
			r.EvaluationName,
			fmt.Sprintf("%d/%d", r.Score, r.Total),
			fmt.Sprintf("%.1f%%", r.Percentage),
			r.CompletedAt.Format(exportTimeLayout),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
