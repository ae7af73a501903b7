package urgency

import (
	"encoding/json"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBoundaries(t *testing.T) {
	today := civil.Date{Year: 2026, Month: 3, Day: 30}

	tests := []struct {
		name string
		days int
		want Tier
	}{
		{"long overdue", -30, Critical},
		{"overdue", -1, Critical},
		{"due today", 0, Critical},
		{"due tomorrow", 1, Critical},
		{"two days", 2, Warning},
		{"five days", 5, Warning},
		{"six days", 6, OK},
		{"a month out", 31, OK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			due := today.AddDays(tc.days)
			assert.Equal(t, tc.want, Classify(&due, today))
		})
	}
}

func TestClassifyUnscheduled(t *testing.T) {
	today := civil.Date{Year: 2026, Month: 1, Day: 1}
	assert.Equal(t, Unscheduled, Classify(nil, today))
}

func TestClassifyAcrossMonthAndYear(t *testing.T) {
	today := civil.Date{Year: 2026, Month: 12, Day: 30}
	due := civil.Date{Year: 2027, Month: 1, Day: 4} // five days later
	assert.Equal(t, Warning, Classify(&due, today))

	due = civil.Date{Year: 2027, Month: 1, Day: 5}
	assert.Equal(t, OK, Classify(&due, today))
}

func TestClassifyDependsOnlyOnReferenceDate(t *testing.T) {
	due := civil.Date{Year: 2026, Month: 5, Day: 10}

	assert.Equal(t, OK, Classify(&due, civil.Date{Year: 2026, Month: 5, Day: 1}))
	assert.Equal(t, Warning, Classify(&due, civil.Date{Year: 2026, Month: 5, Day: 7}))
	assert.Equal(t, Critical, Classify(&due, civil.Date{Year: 2026, Month: 5, Day: 9}))
	assert.Equal(t, Critical, Classify(&due, civil.Date{Year: 2026, Month: 5, Day: 20}))
}

func TestSeverityOrderIsNotAlphabetical(t *testing.T) {
	assert.True(t, Critical.MoreSevere(Warning))
	assert.True(t, Warning.MoreSevere(OK))
	assert.True(t, OK.MoreSevere(Unscheduled))
	assert.False(t, Unscheduled.MoreSevere(OK))

	// alphabetical would put UNSCHEDULED above OK and WARNING above CRITICAL
	assert.Greater(t, Critical.Severity(), Warning.Severity())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "VERMELHO", Critical.Label())
	assert.Equal(t, "AMARELO", Warning.Label())
	assert.Equal(t, "VERDE", OK.Label())
	assert.Equal(t, "AZUL", Unscheduled.Label())
}

func TestParseTier(t *testing.T) {
	for _, s := range []string{"critical", "VERMELHO", " Critical "} {
		tier, err := ParseTier(s)
		require.NoError(t, err, s)
		assert.Equal(t, Critical, tier)
	}

	_, err := ParseTier("purple")
	assert.Error(t, err)
}

func TestTierJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Tier{"tier": Warning})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tier":"WARNING"}`, string(b))

	var out map[string]Tier
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, Warning, out["tier"])
}
