package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
)

// Mode selects which submissions a report covers.
type Mode string

const (
	ModeStatus Mode = "status"
	ModeNumber Mode = "number"
	ModeToday  Mode = "today"
	ModeMonth  Mode = "month"
	ModeRange  Mode = "range"
	ModeStats  Mode = "stats"
)

// DateLayout is the day format accepted for range reports, e.g. 01-03-2026.
const DateLayout = "02-01-2006"

// Source is the submission storage a report reads from.
type Source interface {
	GetByStatus(ctx context.Context, status model.Status) ([]*model.Submission, error)
	GetByNumber(ctx context.Context, year, number int) (*model.Submission, error)
	GetCreatedBetween(ctx context.Context, from, to time.Time) ([]*model.Submission, error)
}

// Query describes a report request.
type Query struct {
	Mode   Mode
	Status model.Status // ModeStatus, active when empty
	Number int          // ModeNumber
	Year   int          // ModeNumber, current year when 0
	From   string       // ModeRange, first day in DateLayout
	To     string       // ModeRange, last day in DateLayout, inclusive
}

// Selection is the result of a query.
type Selection struct {
	Title string
	// Empty is the message shown when Subs is empty.
	Empty string
	Subs  []*model.Submission
}

// Select loads the submissions q asks for. Malformed queries are ErrValidation.
func Select(ctx context.Context, src Source, q Query, now time.Time) (Selection, error) {
	switch q.Mode {
	case "", ModeStatus:
		status := q.Status
		if status == "" {
			status = model.StatusActive
		}
		if !status.Valid() {
			return Selection{}, errors.Mark(errors.Newf("unknown status %q", status), model.ErrValidation)
		}
		subs, err := src.GetByStatus(ctx, status)
		return Selection{
			Title: fmt.Sprintf("Violations: %s", status.Label()),
			Empty: fmt.Sprintf("There are no %s reports.", status.Label()),
			Subs:  subs,
		}, err

	case ModeNumber:
		if q.Number <= 0 {
			return Selection{}, errors.Mark(errors.Newf("violation number %d", q.Number), model.ErrValidation)
		}
		year := q.Year
		if year == 0 {
			year = now.Year()
		}
		sel := Selection{
			Title: fmt.Sprintf("Violation #%d of %d", q.Number, year),
			Empty: fmt.Sprintf("There is no violation #%d in %d.", q.Number, year),
		}
		sub, err := src.GetByNumber(ctx, year, q.Number)
		if err != nil {
			return Selection{}, err
		}
		if sub != nil {
			sel.Subs = []*model.Submission{sub}
		}
		return sel, nil

	case ModeToday:
		subs, err := src.GetCreatedBetween(ctx, now.Add(-24*time.Hour), time.Time{})
		return Selection{
			Title: "Violations of the last 24 hours",
			Empty: "There are no reports from the last 24 hours.",
			Subs:  subs,
		}, err

	case ModeMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		subs, err := src.GetCreatedBetween(ctx, start, time.Time{})
		return Selection{
			Title: fmt.Sprintf("Violations since %s", start.Format(DateLayout)),
			Empty: "There are no reports this month.",
			Subs:  subs,
		}, err

	case ModeRange:
		from, to, err := ParseRange(q.From, q.To, now.Location())
		if err != nil {
			return Selection{}, err
		}
		subs, err := src.GetCreatedBetween(ctx, from, to.AddDate(0, 0, 1))
		return Selection{
			Title: fmt.Sprintf("Violations from %s to %s", from.Format(DateLayout), to.Format(DateLayout)),
			Empty: "There are no reports in this period.",
			Subs:  subs,
		}, err

	case ModeStats:
		subs, err := src.GetCreatedBetween(ctx, time.Time{}, time.Time{})
		return Selection{
			Title: "Statistics for the whole period",
			Empty: "No violations have been recorded yet.",
			Subs:  subs,
		}, err
	}
	return Selection{}, errors.Mark(errors.Newf("unknown report mode %q", q.Mode), model.ErrValidation)
}

// ParseRange parses two days in DateLayout. The first must be before the second.
func ParseRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(DateLayout, strings.TrimSpace(from), loc)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Mark(errors.Wrapf(err, "start date %q", from), model.ErrValidation)
	}
	end, err := time.ParseInLocation(DateLayout, strings.TrimSpace(to), loc)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Mark(errors.Wrapf(err, "end date %q", to), model.ErrValidation)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, errors.Mark(errors.Newf("start %s is not before end %s", from, to), model.ErrValidation)
	}
	return start, end, nil
}
