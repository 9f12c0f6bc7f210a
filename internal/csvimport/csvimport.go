// Package csvimport reads a spreadsheet export of singles results: one row per
// match, a date column and up to six "Set N" columns, each followed by the
// opponent's score for that set.
package csvimport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/tracker"
)

const maxSets = 6

var errNoHeader = crerr.New("csv has no header row")

// Row is one importable match.
type Row struct {
	Line int
	Date time.Time
	Sets []tracker.SetInput
}

// Skip records a row that was not imported.
type Skip struct {
	Line   int
	Reason string
}

type Result struct {
	Rows    []Row
	Skipped []Skip
}

// Options names the two players and the sport every row is recorded under.
type Options struct {
	Player1ID string
	Player2ID string
	Sport     model.SportType
}

// Input converts r into a singles MatchInput.
func (r Row) Input(opts Options) tracker.MatchInput {
	return tracker.MatchInput{
		SportType: opts.Sport,
		MatchType: model.MatchSingles,
		Player1ID: opts.Player1ID,
		Player2ID: opts.Player2ID,
		Sets:      r.Sets,
		Date:      r.Date,
	}
}

// Import records every row through svc, stopping at the first rejected row.
func Import(ctx context.Context, svc *tracker.Service, rows []Row, opts Options) ([]model.Match, error) {
	out := make([]model.Match, 0, len(rows))
	for _, r := range rows {
		m, err := svc.AddMatch(ctx, r.Input(opts))
		if err != nil {
			return out, crerr.Wrapf(err, "line %d", r.Line)
		}
		out = append(out, m)
	}
	return out, nil
}

type layout struct {
	date int
	sets []int // column of player 1's score for set N; opponent is at +1
}

// Parse reads every data row. Rows without a usable date or without any
// complete set are reported in Skipped rather than failing the import.
func Parse(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return Result{}, errNoHeader
	}
	if err != nil {
		return Result{}, crerr.Wrap(err, "read csv header")
	}
	cols := detect(header)

	var res Result
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, crerr.Wrap(err, "read csv row")
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}

		row, reason := parseRow(rec, cols)
		if reason != "" {
			res.Skipped = append(res.Skipped, Skip{Line: line, Reason: reason})
			continue
		}
		row.Line = line
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func detect(header []string) layout {
	l := layout{date: 0}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "date") {
			l.date = i
			break
		}
	}
	for n := 1; n <= maxSets; n++ {
		want := fmt.Sprintf("set %d", n)
		for i, h := range header {
			if strings.EqualFold(strings.Join(strings.Fields(h), " "), want) {
				l.sets = append(l.sets, i)
				break
			}
		}
	}
	return l
}

func parseRow(rec []string, cols layout) (Row, string) {
	raw := cell(rec, cols.date)
	if raw == "" {
		return Row{}, "no date"
	}
	date, err := ParseDate(raw)
	if err != nil {
		return Row{}, fmt.Sprintf("invalid date %q", raw)
	}

	row := Row{Date: date}
	for n, c := range cols.sets {
		own, opp := cell(rec, c), cell(rec, c+1)
		if own == "" || opp == "" {
			continue
		}
		p1, err1 := strconv.Atoi(own)
		p2, err2 := strconv.Atoi(opp)
		if err1 != nil || err2 != nil {
			return Row{}, fmt.Sprintf("set %d: non-numeric score %q-%q", n+1, own, opp)
		}
		if p1 == p2 {
			return Row{}, fmt.Sprintf("set %d: tied score %d-%d", n+1, p1, p2)
		}
		row.Sets = append(row.Sets, tracker.SetInput{Player1Score: p1, Player2Score: p2})
	}
	if len(row.Sets) == 0 {
		return Row{}, "no sets"
	}
	return row, ""
}

// ParseDate reads a day-first d/m/yyyy date, falling back to the ISO forms
// accepted by model.ParseTime.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, "/") == 2 {
		t, err := time.Parse("2/1/2006", s)
		if err != nil {
			return time.Time{}, crerr.Wrapf(err, "parse %q as dd/mm/yyyy", s)
		}
		return t, nil
	}
	t, err := model.ParseTime(s)
	if err != nil {
		return time.Time{}, crerr.Wrapf(err, "parse %q", s)
	}
	return t, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
