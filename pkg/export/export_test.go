package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"github.com/harrisonrobin/smartflow/pkg/urgency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	due := civil.Date{Year: 2026, Month: 10, Day: 21}
	tasks := []model.Task{
		{ID: "1", Action: "Reconcile, then file", Project: "Close", Context: model.AtComputer, Due: &due, Priority: 3, Tier: urgency.Warning},
		{ID: "2", Action: "Call supplier", Context: model.PhoneCalls, Priority: 2, Completed: true},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tasks))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "action", "project", "context", "due_date", "priority", "completed", "urgency_tier"}, rows[0])
	assert.Equal(t, []string{"1", "Reconcile, then file", "Close", "@computer", "2026-10-21", "3", "false", "WARNING"}, rows[1])
	assert.Equal(t, []string{"2", "Call supplier", "", "@phone", "", "2", "true", "UNSCHEDULED"}, rows[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "id,action,project,context,due_date,priority,completed,urgency_tier\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSVPropagatesWriteErrors(t *testing.T) {
	err := WriteCSV(failingWriter{}, []model.Task{{ID: "1", Action: "x"}})
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	due := civil.Date{Year: 2026, Month: 10, Day: 21}
	tasks := []model.Task{
		{ID: "1", Action: "Reconcile", Project: "Close", Context: model.AtComputer, Due: &due, Priority: 3, Tier: urgency.Warning, Source: model.SourceSeed},
		{ID: "2", Action: "Conferir NF", Context: model.AtComputer, Priority: 3, Source: model.SourceIMAP, Sender: "ana@example.com"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, tasks))
	assert.Contains(t, buf.String(), `"urgency_tier": "WARNING"`)
	assert.Contains(t, buf.String(), `"due_date": "2026-10-21"`)

	var decoded []model.Task
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, urgency.Warning, decoded[0].Tier)
	assert.Equal(t, due, *decoded[0].Due)
	assert.Nil(t, decoded[1].Due)
	assert.Equal(t, urgency.Unscheduled, decoded[1].Tier)
	assert.True(t, decoded[1].IsDemand())
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
