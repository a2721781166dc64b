package model

// Location is a place where violations are recorded.
type Location struct {
	ID              int64  `json:"id" mapstructure:"id"`
	Name            string `json:"name" mapstructure:"name"`
	Description     string `json:"description" mapstructure:"description"`
	ResponsibleID   string `json:"responsible_id,omitempty" mapstructure:"responsible_id"`
	ResponsibleText string `json:"responsible_text,omitempty" mapstructure:"responsible_text"`
}
