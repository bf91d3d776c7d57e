package parser

import "github.com/farxc/odca-monitor/internal/env"

// DailyLayout describes where a daily station report keeps its labels and volumes.
type DailyLayout struct {
	Sheet       string // empty selects the active sheet
	LabelColumn string
	GOVColumn   string
	GSVColumn   string
	NSVColumn   string
	SkipRows    int
	RowCount    int
}

// NominationLayout describes the monthly nomination sheet.
type NominationLayout struct {
	Sheet      string
	DateColumn string
	SkipRows   int
	RowCount   int
}

func DefaultDailyLayout() DailyLayout {
	return DailyLayout{
		LabelColumn: "B",
		GOVColumn:   "D",
		GSVColumn:   "E",
		NSVColumn:   "F",
		SkipRows:    4,
		RowCount:    31,
	}
}

func DefaultNominationLayout() NominationLayout {
	return NominationLayout{
		DateColumn: "A",
		SkipRows:   4,
		RowCount:   31,
	}
}

// LayoutsFromEnv applies the DAILY_* and NOMINATION_* overrides to the defaults.
func LayoutsFromEnv() (DailyLayout, NominationLayout) {
	daily := DefaultDailyLayout()
	daily.Sheet = env.GetString("DAILY_SHEET", daily.Sheet)
	daily.SkipRows = env.GetInt("DAILY_SKIP_ROWS", daily.SkipRows)
	daily.RowCount = env.GetInt("DAILY_ROW_COUNT", daily.RowCount)

	nominations := DefaultNominationLayout()
	nominations.Sheet = env.GetString("NOMINATION_SHEET", nominations.Sheet)
	nominations.SkipRows = env.GetInt("NOMINATION_SKIP_ROWS", nominations.SkipRows)
	nominations.RowCount = env.GetInt("NOMINATION_ROW_COUNT", nominations.RowCount)
	return daily, nominations
}
