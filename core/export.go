package core

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxSheetNameRunes = 31
	rosterHeaderRow   = 3
)

var rosterHeader = []string{"Aluno", "Nota 1", "Nota 2", "Nota 3", "Nota 4"}

// WriteRosterWorkbook writes one worksheet per course roster to w.
func WriteRosterWorkbook(w io.Writer, rosters []CourseRoster) error {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	if len(rosters) == 0 {
		if err := f.SetSheetName(first, "Disciplinas"); err != nil {
			return errors.Wrap(err, "rename sheet")
		}
		if err := f.SetCellValue("Disciplinas", "A1", "Nenhuma disciplina com alunos matriculados."); err != nil {
			return errors.Wrap(err, "write empty notice")
		}
	}

	used := map[string]struct{}{}
	for i, r := range rosters {
		name := uniqueSheetName(sheetName(r.Course), used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return errors.Wrapf(err, "rename sheet for %s", r.Course)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return errors.Wrapf(err, "create sheet for %s", r.Course)
		}
		if err := writeRosterSheet(f, name, r); err != nil {
			return errors.Wrapf(err, "write sheet for %s", r.Course)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func writeRosterSheet(f *excelize.File, sheet string, r CourseRoster) error {
	if err := f.SetCellValue(sheet, "A1", r.Course); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A2", "Professor: "+displayName(r.Instructor)); err != nil {
		return err
	}
	for col, h := range rosterHeader {
		if err := setCell(f, sheet, col+1, rosterHeaderRow, h); err != nil {
			return err
		}
	}
	for i, st := range r.Students {
		row := rosterHeaderRow + 1 + i
		if err := setCell(f, sheet, 1, row, st.Name); err != nil {
			return err
		}
		for j, g := range st.Grades {
			if g == nil {
				continue
			}
			if err := setCell(f, sheet, j+2, row, *g); err != nil {
				return err
			}
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, v)
}

// sheetName maps a course name onto Excel's worksheet naming rules.
func sheetName(course string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, course)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if name == "" {
		name = "Disciplina"
	}
	return truncateRunes(name, maxSheetNameRunes)
}

// uniqueSheetName appends " (n)" until name is unused; Excel compares names case-insensitively.
func uniqueSheetName(name string, used map[string]struct{}) string {
	candidate := name
	for n := 2; ; n++ {
		key := strings.ToLower(candidate)
		if _, ok := used[key]; !ok {
			used[key] = struct{}{}
			return candidate
		}
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(name, maxSheetNameRunes-utf8.RuneCountInString(suffix)) + suffix
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func displayName(name *string) string {
	if name == nil || strings.TrimSpace(*name) == "" {
		return "—"
	}
	return *name
}
