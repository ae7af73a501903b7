package urgency

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// Tier is the urgency semaphore of a task. The numeric value is the severity
// rank, so a larger Tier is always more urgent.
type Tier int

const (
	Unscheduled Tier = iota
	OK
	Warning
	Critical
)

const (
	// CriticalDays is the last day difference that is still Critical.
	CriticalDays = 1
	// WarningDays is the last day difference that is still Warning.
	WarningDays = 5
)

// Classify maps a due date to its tier relative to today. Overdue dates are
// Critical. A nil due date is Unscheduled.
func Classify(due *civil.Date, today civil.Date) Tier {
	if due == nil {
		return Unscheduled
	}

	days := due.DaysSince(today)
	switch {
	case days <= CriticalDays:
		return Critical
	case days <= WarningDays:
		return Warning
	default:
		return OK
	}
}

// Severity returns the sort rank of the tier.
func (t Tier) Severity() int {
	return int(t)
}

// MoreSevere reports whether t sorts before o.
func (t Tier) MoreSevere(o Tier) bool {
	return t.Severity() > o.Severity()
}

func (t Tier) String() string {
	switch t {
	case Critical:
		return "CRITICAL"
	case Warning:
		return "WARNING"
	case OK:
		return "OK"
	default:
		return "UNSCHEDULED"
	}
}

// Label returns the semaphore colour name shown next to a task.
func (t Tier) Label() string {
	switch t {
	case Critical:
		return "VERMELHO"
	case Warning:
		return "AMARELO"
	case OK:
		return "VERDE"
	default:
		return "AZUL"
	}
}

func (t Tier) Symbol() string {
	switch t {
	case Critical:
		return "🔴"
	case Warning:
		return "🟡"
	case OK:
		return "🟢"
	default:
		return "🔵"
	}
}

// ParseTier accepts either the tier name or its semaphore label.
func ParseTier(s string) (Tier, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL", "VERMELHO":
		return Critical, nil
	case "WARNING", "AMARELO":
		return Warning, nil
	case "OK", "VERDE":
		return OK, nil
	case "UNSCHEDULED", "AZUL":
		return Unscheduled, nil
	}
	return Unscheduled, fmt.Errorf("unknown urgency tier %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
