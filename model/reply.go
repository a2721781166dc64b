package model

// Reply is a message an engine wants shown to the actor. Options are rendered as
// buttons; an option's ID comes back as the event when it is pressed.
type Reply struct {
	Text    string   `json:"text"`
	Options []Option `json:"options,omitempty"`
}

// Option is one choice offered with a reply.
type Option struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
	Danger   bool   `json:"danger,omitempty"`
}
