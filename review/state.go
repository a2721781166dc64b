// Package review drives the reviewer conversations: checking new submissions and
// closing corrected ones.
package review

import (
	"strings"

	"github.com/babushkian/OTBot/model"
)

// State is the step of a review conversation.
type State string

const (
	StateIdle            State = "idle"
	StateReview          State = "review"
	StateConfirmActivate State = "confirm_activate"
	StateConfirmReject   State = "confirm_reject"
	StateConfirmClose    State = "confirm_close"
)

// Flow selects which submissions a reviewer works on.
type Flow string

const (
	// FlowCheck moves pending submissions to active or rejected.
	FlowCheck Flow = "check"
	// FlowClose moves active submissions to corrected.
	FlowClose Flow = "close"
)

// Source is the status a flow picks submissions from.
func (f Flow) Source() model.Status {
	if f == FlowClose {
		return model.StatusActive
	}
	return model.StatusPendingReview
}

// Action is a status change a reviewer can request.
type Action string

const (
	ActionActivate Action = "activate"
	ActionReject   Action = "reject"
	ActionClose    Action = "close"
)

type transition struct {
	from, to model.Status
	confirm  State
	verb     string
}

var transitions = map[Action]transition{
	ActionActivate: {model.StatusPendingReview, model.StatusActive, StateConfirmActivate, "activate"},
	ActionReject:   {model.StatusPendingReview, model.StatusRejected, StateConfirmReject, "reject"},
	ActionClose:    {model.StatusActive, model.StatusCorrected, StateConfirmClose, "close"},
}

func actionFor(s State) (Action, bool) {
	for a, t := range transitions {
		if t.confirm == s {
			return a, true
		}
	}
	return "", false
}

// Draft is what a review conversation remembers between events.
type Draft struct {
	SubmissionID string `json:"submission_id"`
	Number       int    `json:"number"`
	Flow         Flow   `json:"flow"`
}

// EventType tells what a review event carries.
type EventType string

const (
	EventList    EventType = "list"
	EventOpen    EventType = "open"
	EventRequest EventType = "request"
	EventConfirm EventType = "confirm"
	EventCancel  EventType = "cancel"
)

type Event struct {
	Type         EventType
	Flow         Flow
	SubmissionID string
	Action       Action
	Yes          bool
}

const (
	optOpen          = "rv_open"
	optRequest       = "rv_act"
	optConfirm       = "rv_confirm"
	OptCancelReview  = "rv_cancel"
	openOptionPrefix = optOpen + ":"
)

// OptionPrefixes lists the option ID prefixes owned by the review workflow.
var OptionPrefixes = []string{optOpen, optRequest, optConfirm, OptCancelReview}

// ParseOption turns a pressed option ID back into an event.
func ParseOption(id string) (Event, bool) {
	prefix, arg, _ := strings.Cut(id, ":")
	switch prefix {
	case optOpen:
		if arg == "" {
			return Event{}, false
		}
		return Event{Type: EventOpen, SubmissionID: arg}, true
	case optRequest:
		a := Action(arg)
		if _, ok := transitions[a]; !ok {
			return Event{}, false
		}
		return Event{Type: EventRequest, Action: a}, true
	case optConfirm:
		switch arg {
		case "yes":
			return Event{Type: EventConfirm, Yes: true}, true
		case "no":
			return Event{Type: EventConfirm}, true
		}
	case OptCancelReview:
		return Event{Type: EventCancel}, true
	}
	return Event{}, false
}
