package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ErrUnknownCategory is returned when a company or operation has no display
// name in the catalog.
var ErrUnknownCategory = errors.New("unknown category")

type UnknownCategoryError struct {
	Kind string
	Name string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("%s: %s %q", ErrUnknownCategory, e.Kind, e.Name)
}

func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// Style colors are hex RGB without the leading '#'.
type Style struct {
	Background string
	Font       string
}

func DefaultStyle() Style {
	return Style{Background: "FF0000", Font: "000000"}
}

func (s Style) withDefaults() Style {
	d := DefaultStyle()
	if s.Background == "" {
		s.Background = d.Background
	}
	if s.Font == "" {
		s.Font = d.Font
	}
	return s
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

// headerStyle is the filled, bold, bordered style of title and header cells.
func headerStyle(f *excelize.File, s Style, wrap bool) (int, error) {
	return f.NewStyle(&excelize.Style{
		Border:    thinBorder(),
		Fill:      excelize.Fill{Type: "pattern", Color: []string{s.Background}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: s.Font},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: wrap},
	})
}

func bodyStyle(f *excelize.File, s Style, bold bool) (int, error) {
	return f.NewStyle(&excelize.Style{
		Border:    thinBorder(),
		Font:      &excelize.Font{Bold: bold, Color: s.Font},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// Save writes f as dir/name, creating dir when needed, and returns the path.
func Save(f *excelize.File, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return path, nil
}
