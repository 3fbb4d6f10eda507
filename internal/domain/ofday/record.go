// internal/domain/ofday/record.go
package ofday

import "strings"

// Record is one day's content for a category.
type Record struct {
	Title       string `json:"title" yaml:"title"`
	Subtitle    string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// EmptyRecord is returned for days without content.
var EmptyRecord = Record{}

// IsEmpty reports whether there is nothing to show for the record.
func (r Record) IsEmpty() bool {
	return strings.TrimSpace(r.Title) == "" &&
		strings.TrimSpace(r.Subtitle) == "" &&
		strings.TrimSpace(r.Description) == ""
}

// Field is the sub-field the rotation clock selects inside a category slot.
type Field int

const (
	FieldSubtitle Field = iota
	FieldDescription
)

func (f Field) String() string {
	switch f {
	case FieldSubtitle:
		return "SUBTITLE"
	case FieldDescription:
		return "DESCRIPTION"
	default:
		return "UNKNOWN"
	}
}

// Choice is what actually gets rendered once content availability is taken into account.
type Choice int

const (
	ChoiceSubtitle Choice = iota
	ChoiceDescription
	ChoiceTitleOnly
)

func (c Choice) String() string {
	switch c {
	case ChoiceSubtitle:
		return "SUBTITLE"
	case ChoiceDescription:
		return "DESCRIPTION"
	case ChoiceTitleOnly:
		return "TITLE_ONLY"
	default:
		return "UNKNOWN"
	}
}

func (c Choice) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Resolve picks the text to show for the selected field.
// A missing field (empty or whitespace) falls back to the other one; with neither, only the title is shown.
func (r Record) Resolve(selected Field) (Choice, string) {
	subtitle := strings.TrimSpace(r.Subtitle)
	description := strings.TrimSpace(r.Description)

	switch {
	case selected == FieldSubtitle && subtitle != "":
		return ChoiceSubtitle, r.Subtitle
	case selected == FieldDescription && description != "":
		return ChoiceDescription, r.Description
	case subtitle != "":
		return ChoiceSubtitle, r.Subtitle
	case description != "":
		return ChoiceDescription, r.Description
	default:
		return ChoiceTitleOnly, ""
	}
}
