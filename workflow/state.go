// Package workflow drives the intake conversation that turns photos and menu choices
// into a committed violation report.
package workflow

import (
	"sort"
	"strconv"
	"strings"

	"github.com/babushkian/OTBot/model"
)

// State is the step an intake conversation is in.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingPhoto    State = "awaiting_photo"
	StateAwaitingLocation State = "awaiting_location"
	StateAwaitingCategory State = "awaiting_category"
	StateAwaitingActions  State = "awaiting_remedial_actions"
	StateAwaitingConfirm  State = "awaiting_confirmation"
)

// Draft is the data collected so far.
type Draft struct {
	ReporterID   string        `json:"reporter_id"`
	ReporterName string        `json:"reporter_name"`
	Photos       []model.Photo `json:"photos,omitempty"`
	Description  string        `json:"description,omitempty"`
	LocationID   int64         `json:"location_id,omitempty"`
	LocationName string        `json:"location_name,omitempty"`
	CategoryPath string        `json:"category_path,omitempty"`
	Category     string        `json:"category,omitempty"`
	Selected     []int         `json:"selected,omitempty"`
	Actions      []string      `json:"actions,omitempty"`
}

// toggle flips id in the selected set. The set stays sorted.
func (d *Draft) toggle(id int) {
	for i, s := range d.Selected {
		if s == id {
			d.Selected = append(d.Selected[:i:i], d.Selected[i+1:]...)
			return
		}
	}
	d.Selected = append(d.Selected, id)
	sort.Ints(d.Selected)
}

func (d *Draft) isSelected(id int) bool {
	for _, s := range d.Selected {
		if s == id {
			return true
		}
	}
	return false
}

// Submission builds the record committed from the draft.
func (d *Draft) Submission() *model.Submission {
	return &model.Submission{
		ReporterID:   d.ReporterID,
		ReporterName: d.ReporterName,
		LocationID:   d.LocationID,
		LocationName: d.LocationName,
		Category:     d.Category,
		Description:  d.Description,
		Actions:      append([]string(nil), d.Actions...),
		Photos:       append([]model.Photo(nil), d.Photos...),
	}
}

// EventType tells what an inbound event carries.
type EventType string

const (
	EventStart          EventType = "start"
	EventPhoto          EventType = "photo"
	EventText           EventType = "text"
	EventLocation       EventType = "location"
	EventCategory       EventType = "category"
	EventToggleAction   EventType = "toggle_action"
	EventConfirmActions EventType = "confirm_actions"
	EventDecision       EventType = "decision"
	EventCancel         EventType = "cancel"
)

// Event is one inbound chat event for the intake workflow. Payloads are raw photos;
// the engine stores them and fills Photos before the transition runs.
type Event struct {
	Type         EventType
	Payloads     []model.PhotoPayload
	Photos       []model.Photo
	Caption      string
	LocationID   int64
	CategoryPath string
	ActionID     int
	Accept       bool
}

// Option IDs understood by ParseOption.
const (
	optLocation     = "loc"
	optCategory     = "cat"
	optAction       = "act"
	optActionsDone  = "act_ok"
	optDecision     = "fin"
	OptCancelIntake = "cancel_intake"
)

// OptionPrefixes lists the option ID prefixes owned by the intake workflow.
var OptionPrefixes = []string{optLocation, optCategory, optAction, optActionsDone, optDecision, OptCancelIntake}

func locationOption(id int64) string    { return optLocation + ":" + strconv.FormatInt(id, 10) }
func categoryOption(path string) string { return optCategory + ":" + path }
func actionOption(id int) string        { return optAction + ":" + strconv.Itoa(id) }

// ParseOption turns a pressed option ID back into an event.
func ParseOption(id string) (Event, bool) {
	prefix, arg, _ := strings.Cut(id, ":")
	switch prefix {
	case optLocation:
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return Event{}, false
		}
		return Event{Type: EventLocation, LocationID: n}, true
	case optCategory:
		return Event{Type: EventCategory, CategoryPath: arg}, true
	case optAction:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return Event{}, false
		}
		return Event{Type: EventToggleAction, ActionID: n}, true
	case optActionsDone:
		return Event{Type: EventConfirmActions}, true
	case optDecision:
		switch arg {
		case "yes":
			return Event{Type: EventDecision, Accept: true}, true
		case "no":
			return Event{Type: EventDecision, Accept: false}, true
		}
	case OptCancelIntake:
		return Event{Type: EventCancel}, true
	}
	return Event{}, false
}
