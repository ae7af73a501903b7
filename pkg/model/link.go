package model

// Link is a quick-reference entry shown next to the agenda, such as a shared
// folder or spreadsheet the weekly review relies on.
type Link struct {
	Name string `json:"name" mapstructure:"name" validate:"required"`
	URL  string `json:"url,omitempty" mapstructure:"url" validate:"omitempty,url"`
}
