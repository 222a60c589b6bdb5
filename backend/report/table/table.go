package table

import (
	"errors"
	"fmt"
	"sort"

	"usagereport/backend/report"
)

var ErrModeMismatch = errors.New("table mode does not match report mode")

const (
	headerName   = "Activity"
	headerPerson = "Person"
)

type Column struct {
	Key    string
	Header string
}

type Cell struct {
	Text  string
	Link  string
	Color string
	// Count is set for day cells; exports write it as a number.
	Count   int64
	IsCount bool
}

type Row struct {
	Cells []Cell
	// Section marks a heading row shown in HTML only.
	Section bool
}

type Table struct {
	ID      string
	Columns []Column
	Rows    []Row
	PerUser bool
}

// Build lays out r as a table, choosing the layout from the report mode.
func Build(r *report.Report, siteURL string) (*Table, error) {
	if r.Matrix.PerUser {
		return BuildPerUser(r, siteURL)
	}
	return BuildAggregate(r, siteURL)
}

func newTable(r *report.Report, perUser bool) *Table {
	t := &Table{
		ID:      fmt.Sprintf("report_usage_%d", r.CourseID),
		Columns: []Column{{Key: "name", Header: headerName}},
		PerUser: perUser,
	}
	if perUser {
		t.Columns = append(t.Columns, Column{Key: "person", Header: headerPerson})
	}
	for _, d := range r.Window.Dates() {
		t.Columns = append(t.Columns, Column{Key: d.Format("2006-01-02"), Header: d.Format("02.01")})
	}
	return t
}

// BuildAggregate groups modules by section and colors every cell relative
// to its row maximum, and every module name relative to the largest row
// maximum.
func BuildAggregate(r *report.Report, siteURL string) (*Table, error) {
	if r.Matrix.PerUser {
		return nil, ErrModeMismatch
	}
	t := newTable(r, false)
	globalMax := r.Matrix.Max()

	type group struct {
		number int
		label  string
		rows   []Row
	}
	groups := make(map[int]*group)

	for _, row := range r.Matrix.Rows {
		mod := r.Modules[row.ContextID]
		rowMax := row.Max()

		cells := make([]Cell, 0, len(row.Counts)+1)
		cells = append(cells, Cell{
			Text:  mod.Name,
			Link:  moduleURL(siteURL, mod),
			Color: ColorByPercentage(ratio(rowMax, globalMax)),
		})
		for _, count := range row.Counts {
			cells = append(cells, Cell{
				Text:    fmt.Sprint(count),
				Color:   ColorByPercentage(ratio(count, rowMax)),
				Count:   count,
				IsCount: true,
			})
		}

		g, ok := groups[mod.SectionNumber]
		if !ok {
			g = &group{number: mod.SectionNumber, label: mod.SectionLabel()}
			groups[mod.SectionNumber] = g
		}
		g.rows = append(g.rows, Row{Cells: cells})
	}

	numbers := make([]int, 0, len(groups))
	for n := range groups {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	for _, n := range numbers {
		g := groups[n]
		heading := make([]Cell, len(t.Columns))
		heading[0] = Cell{Text: g.label}
		t.Rows = append(t.Rows, Row{Cells: heading, Section: true})
		t.Rows = append(t.Rows, g.rows...)
	}
	return t, nil
}

// BuildPerUser emits one uncolored row per module and user.
func BuildPerUser(r *report.Report, siteURL string) (*Table, error) {
	if !r.Matrix.PerUser {
		return nil, ErrModeMismatch
	}
	t := newTable(r, true)

	for _, row := range r.Matrix.Rows {
		mod := r.Modules[row.ContextID]
		for _, u := range row.Users {
			person := r.Users[u.UserID]
			if person.FullName == "" {
				person.FullName = fmt.Sprintf("User #%d", u.UserID)
			}

			cells := make([]Cell, 0, len(u.Counts)+2)
			cells = append(cells,
				Cell{Text: mod.Name, Link: moduleURL(siteURL, mod)},
				Cell{Text: person.FullName, Link: userURL(siteURL, u.UserID)},
			)
			for _, count := range u.Counts {
				cells = append(cells, Cell{Text: fmt.Sprint(count), Count: count, IsCount: true})
			}
			t.Rows = append(t.Rows, Row{Cells: cells})
		}
	}
	return t, nil
}

func moduleURL(siteURL string, mod report.ModuleInfo) string {
	if mod.ModuleID == 0 {
		return ""
	}
	return fmt.Sprintf("%s/mod/%s/view.php?id=%d", siteURL, mod.ModType, mod.ModuleID)
}

func userURL(siteURL string, userID uint) string {
	return fmt.Sprintf("%s/user/view.php?id=%d", siteURL, userID)
}
