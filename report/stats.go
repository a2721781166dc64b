package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/babushkian/OTBot/model"
)

// Count is a named tally.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarises a set of submissions.
type Stats struct {
	Total      int                  `json:"total"`
	ByStatus   map[model.Status]int `json:"by_status"`
	ByLocation []Count              `json:"by_location"`
	ByCategory []Count              `json:"by_category"`
}

// Summarize counts subs per status, location and category. Tallies are sorted by count,
// largest first, then by name.
func Summarize(subs []*model.Submission) Stats {
	st := Stats{Total: len(subs), ByStatus: make(map[model.Status]int)}
	locations := make(map[string]int)
	categories := make(map[string]int)
	for _, sub := range subs {
		st.ByStatus[sub.Status]++
		locations[sub.LocationName]++
		categories[sub.Category]++
	}
	st.ByLocation = tally(locations)
	st.ByCategory = tally(categories)
	return st
}

func tally(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Text formats the statistics as a plain text summary.
func (s Stats) Text(title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nTotal violations: %d\n", title, s.Total)

	b.WriteString("\nBy status:\n")
	for _, status := range []model.Status{model.StatusPendingReview, model.StatusActive, model.StatusCorrected, model.StatusRejected} {
		fmt.Fprintf(&b, "  %s: %d\n", status.Label(), s.ByStatus[status])
	}
	writeTally(&b, "By location", s.ByLocation)
	writeTally(&b, "By category", s.ByCategory)
	return strings.TrimRight(b.String(), "\n")
}

func writeTally(b *strings.Builder, heading string, counts []Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, c := range counts {
		name := c.Name
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(b, "  %s: %d\n", name, c.Count)
	}
}
