// Package report turns submissions into the document sent to reviewers and the audience.
package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/babushkian/OTBot/layout"
	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/notify"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

// PhotoReader reads stored photo bytes.
type PhotoReader interface {
	Read(p model.Photo) ([]byte, error)
}

// Report is the finished data structure a document is rendered from.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
}

// Entry is one submission with its photos laid out in rows.
type Entry struct {
	ID           string          `json:"id"`
	Number       int             `json:"number"`
	Status       string          `json:"status"`
	ReporterName string          `json:"reporter_name"`
	LocationName string          `json:"location_name"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Actions      []string        `json:"actions"`
	CreatedAt    time.Time       `json:"created_at"`
	Rows         [][]model.Photo `json:"rows"`
}

// Build lays out every submission. A submission without photos gets no rows.
func Build(subs []*model.Submission, target float64, now time.Time) (*Report, error) {
	rep := &Report{GeneratedAt: now, Entries: make([]Entry, 0, len(subs))}
	for _, sub := range subs {
		e := Entry{
			ID:           sub.ID,
			Number:       sub.Number,
			Status:       sub.Status.Label(),
			ReporterName: sub.ReporterName,
			LocationName: sub.LocationName,
			Category:     sub.Category,
			Description:  sub.Description,
			Actions:      sub.Actions,
			CreatedAt:    sub.CreatedAt,
		}
		if len(sub.Photos) > 0 {
			rows, err := layout.Pack(sub.Photos, target)
			if err != nil {
				return nil, errors.Wrapf(err, "lay out submission %s", sub.ID)
			}
			for _, row := range rows {
				e.Rows = append(e.Rows, []model.Photo(row))
			}
		}
		rep.Entries = append(rep.Entries, e)
	}
	return rep, nil
}

// Renderer produces an HTML document with the photos embedded.
type Renderer struct {
	photos PhotoReader
	target float64
	now    func() time.Time
}

func NewRenderer(photos PhotoReader, target float64) *Renderer {
	if target <= 0 {
		target = layout.DefaultTargetRatio
	}
	return &Renderer{photos: photos, target: target, now: time.Now}
}

type htmlImage struct {
	Src   template.URL
	Style template.CSS
}

type htmlEntry struct {
	Entry
	Created string
	Rows    [][]htmlImage
}

type htmlData struct {
	Title     string
	Generated string
	Entries   []htmlEntry
}

// Render builds the document for subs. Photos that cannot be read are left out.
func (r *Renderer) Render(title string, subs ...*model.Submission) (notify.Document, error) {
	if len(subs) == 0 {
		return notify.Document{}, errors.Mark(errors.New("nothing to render"), model.ErrEmptyInput)
	}
	rep, err := Build(subs, r.target, r.now())
	if err != nil {
		return notify.Document{}, err
	}

	data := htmlData{Title: title, Generated: rep.GeneratedAt.Format("2006-01-02 15:04")}
	for _, e := range rep.Entries {
		he := htmlEntry{Entry: e, Created: e.CreatedAt.Format("2006-01-02 15:04")}
		for _, row := range e.Rows {
			he.Rows = append(he.Rows, r.row(row))
		}
		data.Entries = append(data.Entries, he)
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return notify.Document{}, errors.Wrap(err, "execute report template")
	}
	name := "report.html"
	if len(subs) == 1 {
		name = fmt.Sprintf("report-%d.html", subs[0].Number)
	}
	return notify.Document{Name: name, ContentType: "text/html", Data: buf.Bytes(), Caption: title}, nil
}

// row sizes images so both photos of a row share one height; a lone photo takes the
// share of the page its ratio would fill in a full row.
func (r *Renderer) row(row []model.Photo) []htmlImage {
	total := 0.0
	for _, p := range row {
		total += p.AspectRatio
	}
	if len(row) == 1 && total < r.target {
		total = r.target
	}
	var imgs []htmlImage
	for _, p := range row {
		data, err := r.photos.Read(p)
		if err != nil {
			log.Warn().Err(err).Str("photo", p.Hash).Msg("photo missing from report")
			continue
		}
		imgs = append(imgs, htmlImage{
			Src:   template.URL("data:" + p.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(data)),
			Style: template.CSS(fmt.Sprintf("width: %.1f%%", p.AspectRatio/total*100)),
		})
	}
	return imgs
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
.entry { page-break-after: always; margin-bottom: 2em; }
.row { display: flex; gap: 0; margin-bottom: 4px; }
.row img { display: block; height: auto; }
dt { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated {{.Generated}}</p>
{{range .Entries}}
<div class="entry">
<h2>Violation #{{.Number}} ({{.Status}})</h2>
<dl>
<dt>Date</dt><dd>{{.Created}}</dd>
<dt>Reported by</dt><dd>{{.ReporterName}}</dd>
<dt>Location</dt><dd>{{.LocationName}}</dd>
<dt>Category</dt><dd>{{.Category}}</dd>
<dt>Description</dt><dd>{{.Description}}</dd>
<dt>Remedial actions</dt><dd>{{if .Actions}}<ul>{{range .Actions}}<li>{{.}}</li>{{end}}</ul>{{else}}none{{end}}</dd>
</dl>
{{range .Rows}}<div class="row">{{range .}}<img src="{{.Src}}" style="{{.Style}}">{{end}}</div>
{{end}}
</div>
{{end}}
</body>
</html>
`))
