package workflow

import (
	"fmt"
	"strings"

	"github.com/babushkian/OTBot/catalog"
	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
)

// NoDescription is stored when a burst arrives without a caption.
const NoDescription = "No description"

// Menu is what the reporter can choose from.
type Menu struct {
	Locations         []model.Location
	Catalog           *catalog.Catalog
	AllowEmptyActions bool
}

// Outcome is the result of one transition. Err is set, and marked with one of the
// model error classes, when the event was not accepted; Replies already tell the
// actor what went wrong.
type Outcome struct {
	Next    State
	Draft   Draft
	Replies []model.Reply
	Commit  bool
	Err     error
}

// Transition computes the next state of an intake conversation. It has no side effects;
// when Commit is set the caller persists Draft.
func Transition(state State, draft Draft, ev Event, menu Menu) Outcome {
	if ev.Type == EventStart {
		fresh := Draft{ReporterID: draft.ReporterID, ReporterName: draft.ReporterName}
		return Outcome{Next: StateAwaitingPhoto, Draft: fresh, Replies: []model.Reply{photoPrompt()}}
	}
	if ev.Type == EventCancel {
		if state == StateIdle {
			return Outcome{Next: StateIdle, Replies: []model.Reply{{Text: "There is no report in progress."}},
				Err: errors.Mark(errors.New("cancel while idle"), model.ErrValidation)}
		}
		return Outcome{Next: StateIdle, Replies: []model.Reply{{Text: "Report cancelled."}}}
	}

	switch state {
	case StateAwaitingPhoto:
		if ev.Type != EventPhoto || len(ev.Photos) == 0 {
			return reject(state, draft, menu, "Please send a photo of the violation.")
		}
		draft.Photos = ev.Photos
		draft.Description = strings.TrimSpace(ev.Caption)
		if draft.Description == "" {
			draft.Description = NoDescription
		}
		return advance(StateAwaitingLocation, draft, menu)

	case StateAwaitingLocation:
		if ev.Type != EventLocation {
			return reject(state, draft, menu, "Please choose a location from the list.")
		}
		for _, loc := range menu.Locations {
			if loc.ID == ev.LocationID {
				draft.LocationID = loc.ID
				draft.LocationName = loc.Name
				draft.CategoryPath = ""
				return advance(StateAwaitingCategory, draft, menu)
			}
		}
		return Outcome{
			Next:    StateIdle,
			Replies: []model.Reply{{Text: "That location no longer exists. The report was discarded, start again with /detect."}},
			Err:     errors.Mark(errors.Newf("location %d", ev.LocationID), model.ErrNotFound),
		}

	case StateAwaitingCategory:
		if ev.Type != EventCategory {
			return reject(state, draft, menu, "Please choose a category from the list.")
		}
		if ev.CategoryPath == "" {
			draft.CategoryPath = ""
			return advance(StateAwaitingCategory, draft, menu)
		}
		node, names, ok := menu.Catalog.Resolve(ev.CategoryPath)
		if !ok {
			return reject(state, draft, menu, "Unknown category.")
		}
		draft.CategoryPath = ev.CategoryPath
		if !node.IsLeaf() {
			return advance(StateAwaitingCategory, draft, menu)
		}
		draft.Category = strings.Join(names, " / ")
		draft.Selected = nil
		return advance(StateAwaitingActions, draft, menu)

	case StateAwaitingActions:
		switch ev.Type {
		case EventToggleAction:
			if _, ok := menu.Catalog.Action(ev.ActionID); !ok {
				return reject(state, draft, menu, "Unknown remedial action.")
			}
			draft.toggle(ev.ActionID)
			return advance(StateAwaitingActions, draft, menu)
		case EventConfirmActions:
			if len(draft.Selected) == 0 && !menu.AllowEmptyActions {
				return reject(state, draft, menu, "Select at least one remedial action.")
			}
			draft.Actions = draft.Actions[:0:0]
			for _, id := range draft.Selected {
				a, _ := menu.Catalog.Action(id)
				draft.Actions = append(draft.Actions, actionLabel(a))
			}
			return advance(StateAwaitingConfirm, draft, menu)
		}
		return reject(state, draft, menu, "Toggle remedial actions, then press Done.")

	case StateAwaitingConfirm:
		if ev.Type != EventDecision {
			return reject(state, draft, menu, "Please answer Save or Discard.")
		}
		if ev.Accept {
			return Outcome{Next: StateIdle, Draft: draft, Commit: true}
		}
		return Outcome{Next: StateIdle, Replies: []model.Reply{{Text: "Report discarded."}}}
	}

	return Outcome{Next: StateIdle, Replies: []model.Reply{{Text: "Start a new report with /detect."}},
		Err: errors.Mark(errors.Newf("%s event while idle", ev.Type), model.ErrValidation)}
}

func advance(next State, draft Draft, menu Menu) Outcome {
	return Outcome{Next: next, Draft: draft, Replies: []model.Reply{prompt(next, draft, menu)}}
}

// reject keeps state and draft untouched and re-prompts.
func reject(state State, draft Draft, menu Menu, text string) Outcome {
	return Outcome{
		Next:    state,
		Draft:   draft,
		Replies: []model.Reply{{Text: text}, prompt(state, draft, menu)},
		Err:     errors.Mark(errors.Newf("unexpected event in %s", state), model.ErrValidation),
	}
}

// prompt renders the question asked in state.
func prompt(state State, draft Draft, menu Menu) model.Reply {
	switch state {
	case StateAwaitingPhoto:
		return photoPrompt()
	case StateAwaitingLocation:
		if len(menu.Locations) == 0 {
			return model.Reply{Text: "No locations are configured, ask an administrator.", Options: []model.Option{cancelOption()}}
		}
		r := model.Reply{Text: "Choose the location:"}
		for _, loc := range menu.Locations {
			r.Options = append(r.Options, model.Option{ID: locationOption(loc.ID), Label: loc.Name})
		}
		r.Options = append(r.Options, cancelOption())
		return r
	case StateAwaitingCategory:
		return categoryPrompt(draft.CategoryPath, menu.Catalog)
	case StateAwaitingActions:
		r := model.Reply{Text: fmt.Sprintf("Category: %s\nChoose remedial actions, then press Done:", draft.Category)}
		for _, a := range menu.Catalog.Actions {
			r.Options = append(r.Options, model.Option{ID: actionOption(a.ID), Label: actionLabel(a), Selected: draft.isSelected(a.ID)})
		}
		r.Options = append(r.Options, model.Option{ID: optActionsDone, Label: "Done"}, cancelOption())
		return r
	case StateAwaitingConfirm:
		return model.Reply{
			Text: Summary(draft),
			Options: []model.Option{
				{ID: optDecision + ":yes", Label: "Save"},
				{ID: optDecision + ":no", Label: "Discard", Danger: true},
			},
		}
	}
	return model.Reply{Text: "Start a new report with /detect."}
}

func photoPrompt() model.Reply {
	return model.Reply{
		Text:    "Send one or more photos of the violation. The caption becomes the description.",
		Options: []model.Option{cancelOption()},
	}
}

func categoryPrompt(path string, cat *catalog.Catalog) model.Reply {
	nodes := cat.Categories
	r := model.Reply{Text: "Choose the category:"}
	if path != "" {
		if node, names, ok := cat.Resolve(path); ok {
			nodes = node.Children
			r.Text = fmt.Sprintf("%s\nChoose the category:", strings.Join(names, " / "))
		}
	}
	for _, n := range nodes {
		child := n.Key
		if path != "" {
			child = path + catalog.PathSeparator + n.Key
		}
		r.Options = append(r.Options, model.Option{ID: categoryOption(child), Label: n.Name})
	}
	if path != "" {
		parent := ""
		if i := strings.LastIndex(path, catalog.PathSeparator); i >= 0 {
			parent = path[:i]
		}
		r.Options = append(r.Options, model.Option{ID: categoryOption(parent), Label: "Back"})
	}
	r.Options = append(r.Options, cancelOption())
	return r
}

func cancelOption() model.Option {
	return model.Option{ID: OptCancelIntake, Label: "Cancel", Danger: true}
}

func actionLabel(a model.RemedialAction) string {
	if a.Deadline == "" {
		return a.Name
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Deadline)
}

// Summary is the text shown before the reporter confirms the report.
func Summary(d Draft) string {
	var b strings.Builder
	b.WriteString("Please check the report:\n")
	fmt.Fprintf(&b, "Location: %s\n", d.LocationName)
	fmt.Fprintf(&b, "Category: %s\n", d.Category)
	fmt.Fprintf(&b, "Description: %s\n", d.Description)
	fmt.Fprintf(&b, "Photos: %d\n", len(d.Photos))
	if len(d.Actions) == 0 {
		b.WriteString("Remedial actions: none\n")
	} else {
		b.WriteString("Remedial actions:\n")
		for _, a := range d.Actions {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}
	b.WriteString("Save the report?")
	return b.String()
}
