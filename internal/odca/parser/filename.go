package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/farxc/odca-monitor/internal/odca/types"
)

var (
	ErrInvalidReportDate       = errors.New("invalid report date")
	ErrInvalidNominationPeriod = errors.New("invalid nomination period")
)

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"2006_01_02",
	"02.01.2006",
	"20060102",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Months are the Spanish month names used in nomination file names.
var Months = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ReportDateFromFilename extracts the reporting day from names such as
// "REPORTE DIARIO 2024-03-15.xlsx".
func ReportDateFromFilename(filename string) (time.Time, error) {
	tokens := strings.Fields(stem(filename))
	for i := len(tokens) - 1; i >= 0; i-- {
		if t, ok := ParseDate(tokens[i]); ok {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: no date in file name %q", ErrInvalidReportDate, filepath.Base(filename))
}

// MonthIndex resolves a Spanish month name, case-insensitively.
func MonthIndex(name string) (time.Month, bool) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "Setiembre") {
		return time.September, true
	}
	for i, m := range Months {
		if strings.EqualFold(m, name) {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// NominationPeriodFromFilename reads "<prefix>_<Mes>.<Año>.xlsx" into the month it covers.
func NominationPeriodFromFilename(filename string) (types.Period, error) {
	name := stem(filename)
	_, rest, found := strings.Cut(name, "_")
	if !found {
		return types.Period{}, fmt.Errorf("%w: %q has no month section", ErrInvalidNominationPeriod, filepath.Base(filename))
	}
	monthName, yearStr, found := strings.Cut(rest, ".")
	if !found {
		return types.Period{}, fmt.Errorf("%w: %q has no year", ErrInvalidNominationPeriod, filepath.Base(filename))
	}
	month, ok := MonthIndex(monthName)
	if !ok {
		return types.Period{}, fmt.Errorf("%w: unknown month %q", ErrInvalidNominationPeriod, monthName)
	}
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil || year < 1900 {
		return types.Period{}, fmt.Errorf("%w: bad year %q", ErrInvalidNominationPeriod, yearStr)
	}
	return types.MonthPeriod(year, month), nil
}
