package quotes

import "github.com/jinzhu/gorm"

type Quote struct {
	gorm.Model
	Text   string `gorm:"type:text"`
	Author string
}

// Display returns the quote's display form: text truncated to the
// first 50 characters with an ellipsis, author appended when present.
// Text of exactly 50 characters is left alone.
func (q Quote) Display() string {
	text := q.Text
	if runes := []rune(text); len(runes) > 50 {
		text = string(runes[:50]) + "..."
	}
	if q.Author != "" {
		return text + " - " + q.Author
	}
	return text
}
