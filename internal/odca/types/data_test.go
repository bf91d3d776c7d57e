package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, _ := time.Parse(DateLayout, s)
	return t
}

func TestPeriods(t *testing.T) {
	march := MonthPeriod(2024, time.March)
	assert.Equal(t, "[2024-03-01, 2024-04-01)", march.String())
	assert.True(t, march.Contains(date("2024-03-31")))
	assert.False(t, march.Contains(date("2024-04-01")))

	dec := MonthPeriod(2023, time.December)
	assert.Equal(t, date("2024-01-01"), dec.End)

	day := Day(time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC))
	assert.Equal(t, date("2024-03-15"), day.Start)
	assert.Equal(t, date("2024-03-16"), day.End)

	inc := Inclusive(date("2024-03-01"), date("2024-03-10"))
	assert.True(t, inc.Contains(date("2024-03-10")))
	assert.False(t, inc.Contains(date("2024-03-11")))

	var zero Period
	assert.True(t, zero.Matches(date("1999-01-01")))
	assert.False(t, march.Matches(date("2024-02-29")))
}

func TestParseMeasureAndKind(t *testing.T) {
	m, err := ParseMeasure("", GSV)
	assert.NoError(t, err)
	assert.Equal(t, GSV, m)
	_, err = ParseMeasure("API", GSV)
	assert.Error(t, err)

	k, err := ParseReportKind("nominations")
	assert.NoError(t, err)
	assert.Equal(t, NominationReport, k)
	_, err = ParseReportKind("weekly")
	assert.Error(t, err)

	r := ProductionRecord{GOV: 1, GSV: 2, NSV: 3}
	assert.Equal(t, 2.0, r.Value(GSV))
	assert.Equal(t, 3.0, r.Value(NSV))
}
