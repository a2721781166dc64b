package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSource struct {
	subs     []*model.Submission
	status   model.Status
	year     int
	number   int
	from, to time.Time
}

func (r *recordingSource) GetByStatus(_ context.Context, status model.Status) ([]*model.Submission, error) {
	r.status = status
	return r.subs, nil
}

func (r *recordingSource) GetByNumber(_ context.Context, year, number int) (*model.Submission, error) {
	r.year, r.number = year, number
	if len(r.subs) == 0 {
		return nil, nil
	}
	return r.subs[0], nil
}

func (r *recordingSource) GetCreatedBetween(_ context.Context, from, to time.Time) ([]*model.Submission, error) {
	r.from, r.to = from, to
	return r.subs, nil
}

var queryNow = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func TestSelectStatusDefaultsToActive(t *testing.T) {
	src := &recordingSource{}
	sel, err := Select(context.Background(), src, Query{}, queryNow)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, src.status)
	assert.Equal(t, "There are no active reports.", sel.Empty)

	_, err = Select(context.Background(), src, Query{Mode: ModeStatus, Status: "lost"}, queryNow)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestSelectByNumber(t *testing.T) {
	src := &recordingSource{subs: []*model.Submission{burstSubmission()}}
	sel, err := Select(context.Background(), src, Query{Mode: ModeNumber, Number: 7}, queryNow)
	require.NoError(t, err)
	assert.Equal(t, 2026, src.year)
	assert.Equal(t, 7, src.number)
	require.Len(t, sel.Subs, 1)
	assert.Equal(t, "Violation #7 of 2026", sel.Title)

	src = &recordingSource{}
	sel, err = Select(context.Background(), src, Query{Mode: ModeNumber, Number: 3, Year: 2025}, queryNow)
	require.NoError(t, err)
	assert.Equal(t, 2025, src.year)
	assert.Empty(t, sel.Subs)
	assert.Equal(t, "There is no violation #3 in 2025.", sel.Empty)

	_, err = Select(context.Background(), src, Query{Mode: ModeNumber}, queryNow)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestSelectToday(t *testing.T) {
	src := &recordingSource{}
	_, err := Select(context.Background(), src, Query{Mode: ModeToday}, queryNow)
	require.NoError(t, err)
	assert.Equal(t, queryNow.Add(-24*time.Hour), src.from)
	assert.True(t, src.to.IsZero())
}

func TestSelectMonth(t *testing.T) {
	src := &recordingSource{}
	sel, err := Select(context.Background(), src, Query{Mode: ModeMonth}, queryNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), src.from)
	assert.True(t, src.to.IsZero())
	assert.Equal(t, "Violations since 01-03-2026", sel.Title)
}

func TestSelectRangeIncludesLastDay(t *testing.T) {
	src := &recordingSource{}
	sel, err := Select(context.Background(), src, Query{Mode: ModeRange, From: "01-02-2026", To: " 10-02-2026"}, queryNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), src.from)
	assert.Equal(t, time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC), src.to)
	assert.Equal(t, "Violations from 01-02-2026 to 10-02-2026", sel.Title)
}

func TestSelectRangeRejectsBadInput(t *testing.T) {
	src := &recordingSource{}
	for _, q := range []Query{
		{Mode: ModeRange, From: "10-02-2026", To: "01-02-2026"},
		{Mode: ModeRange, From: "01-02-2026", To: "01-02-2026"},
		{Mode: ModeRange, From: "2026-02-01", To: "10-02-2026"},
		{Mode: ModeRange, From: "01-02-2026"},
	} {
		_, err := Select(context.Background(), src, q, queryNow)
		assert.True(t, errors.Is(err, model.ErrValidation), "%+v", q)
	}
	assert.True(t, src.from.IsZero(), "storage is not queried for a bad range")
}

func TestSelectStatsCoversEverything(t *testing.T) {
	src := &recordingSource{}
	_, err := Select(context.Background(), src, Query{Mode: ModeStats}, queryNow)
	require.NoError(t, err)
	assert.True(t, src.from.IsZero())
	assert.True(t, src.to.IsZero())

	_, err = Select(context.Background(), src, Query{Mode: "weekly"}, queryNow)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestSummarize(t *testing.T) {
	a := burstSubmission()
	b := burstSubmission()
	b.Status = model.StatusCorrected
	c := burstSubmission()
	c.LocationName = "Dock"
	c.Category = "PPE"

	st := Summarize([]*model.Submission{a, b, c})
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.ByStatus[model.StatusActive])
	assert.Equal(t, 1, st.ByStatus[model.StatusCorrected])
	assert.Equal(t, []Count{{Name: "Workshop <1>", Count: 2}, {Name: "Dock", Count: 1}}, st.ByLocation)
	assert.Equal(t, []Count{{Name: "Other", Count: 2}, {Name: "PPE", Count: 1}}, st.ByCategory)

	text := st.Text("Statistics")
	assert.True(t, strings.HasPrefix(text, "Statistics\nTotal violations: 3"))
	assert.Contains(t, text, "  active: 2")
	assert.Contains(t, text, "  pending review: 0")
	assert.Contains(t, text, "  Dock: 1")
}
