// Package export writes tasks out as CSV for spreadsheets or JSON for scripts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/harrisonrobin/smartflow/pkg/model"
)

// WriteCSV writes a header row and one row per task, in the order given.
func WriteCSV(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.ExportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, t := range tasks {
		if err := cw.Write(t.Record()); err != nil {
			return fmt.Errorf("failed to write task %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes tasks as an indented JSON array, in the order given.
func WriteJSON(w io.Writer, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}
