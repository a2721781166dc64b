package report

import (
	"strings"
	"testing"
	"time"

	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapReader map[string][]byte

func (m mapReader) Read(p model.Photo) ([]byte, error) {
	data, ok := m[p.Hash]
	if !ok {
		return nil, errors.Mark(errors.Newf("photo %s", p.Hash), model.ErrNotFound)
	}
	return data, nil
}

func burstSubmission() *model.Submission {
	return &model.Submission{
		ID:           "s1",
		Number:       7,
		Status:       model.StatusActive,
		ReporterName: "alice",
		LocationName: "Workshop <1>",
		Category:     "Other",
		Description:  "oil",
		Actions:      []string{"Eliminate (3 days)"},
		CreatedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Photos: []model.Photo{
			{Hash: "p1", AspectRatio: 0.7},
			{Hash: "p2", AspectRatio: 0.6},
			{Hash: "p3", AspectRatio: 1.8},
		},
	}
}

func TestBuildLaysOutRows(t *testing.T) {
	rep, err := Build([]*model.Submission{burstSubmission()}, 1.9, time.Now())
	require.NoError(t, err)
	require.Len(t, rep.Entries, 1)

	rows := rep.Entries[0].Rows
	require.Len(t, rows, 2)
	require.Len(t, rows[0], 1)
	assert.Equal(t, "p3", rows[0][0].Hash)
	require.Len(t, rows[1], 2)
	assert.Equal(t, "p1", rows[1][0].Hash)
	assert.Equal(t, "p2", rows[1][1].Hash)
	assert.Equal(t, "active", rep.Entries[0].Status)
}

func TestBuildWithoutPhotos(t *testing.T) {
	sub := burstSubmission()
	sub.Photos = nil
	rep, err := Build([]*model.Submission{sub}, 1.9, time.Now())
	require.NoError(t, err)
	assert.Empty(t, rep.Entries[0].Rows)
}

func TestRenderHTML(t *testing.T) {
	r := NewRenderer(mapReader{"p1": []byte("a"), "p3": []byte("c")}, 1.9)
	doc, err := r.Render("Active violations", burstSubmission())
	require.NoError(t, err)

	assert.Equal(t, "report-7.html", doc.Name)
	assert.Equal(t, "text/html", doc.ContentType)
	html := string(doc.Data)
	assert.Contains(t, html, "Violation #7 (active)")
	assert.Contains(t, html, "Workshop &lt;1&gt;")
	assert.Contains(t, html, "Eliminate (3 days)")
	assert.Equal(t, 2, strings.Count(html, "<img"), "missing photo p2 is skipped")
	assert.Contains(t, html, "width: 94.7%")
	assert.Contains(t, html, "width: 53.8%")
}

func TestRenderNothing(t *testing.T) {
	r := NewRenderer(mapReader{}, 0)
	_, err := r.Render("empty")
	assert.True(t, errors.Is(err, model.ErrEmptyInput))
}

func TestRenderSeveral(t *testing.T) {
	r := NewRenderer(mapReader{}, 1.9)
	a, b := burstSubmission(), burstSubmission()
	b.Number = 8
	doc, err := r.Render("All", a, b)
	require.NoError(t, err)
	assert.Equal(t, "report.html", doc.Name)
	assert.Contains(t, string(doc.Data), "Violation #8")
}

func TestRenderUsesStoredFormat(t *testing.T) {
	sub := burstSubmission()
	sub.Photos = []model.Photo{{Hash: "p1", Path: "images/p1/p1.png", AspectRatio: 1.2}}
	r := NewRenderer(mapReader{"p1": []byte("a")}, 1.9)

	doc, err := r.Render("Active violations", sub)
	require.NoError(t, err)
	assert.Contains(t, string(doc.Data), "data:image/png;base64,")
	assert.NotContains(t, string(doc.Data), "image/jpeg")
}
