package journal

import (
	"sort"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/jinzhu/gorm"

	"moodjournal/auth"
)

// Moods is the fixed set of mood labels an entry can carry.
var Moods = []string{
	"happy",
	"anxious",
	"sad",
	"neutral",
	"excited",
	"frustrated",
	"calm",
	"stressed",
}

type Entry struct {
	gorm.Model
	UserID         uint
	User           auth.User
	Date           time.Time
	Mood           string
	MoodRating     int
	Title          string
	Content        string `gorm:"type:text"`
	GratitudeItems []GratitudeItem
}

type GratitudeItem struct {
	gorm.Model
	EntryID  uint
	ItemText string
}

// ValidationErrors maps a field name to the message shown next to it on
// the form.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(v))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "invalid entry: " + strings.Join(parts, "; ")
}

// ValidateEntry checks the data model invariants. It runs before any
// write, so an invalid entry never reaches storage.
func ValidateEntry(entry Entry) ValidationErrors {
	errs := ValidationErrors{}

	if strings.TrimSpace(entry.Title) == "" {
		errs["title"] = "This field is required."
	} else if !govalidator.StringLength(entry.Title, "1", "200") {
		errs["title"] = "Keep the title under 200 characters."
	}

	if strings.TrimSpace(entry.Content) == "" {
		errs["content"] = "This field is required."
	}

	if !govalidator.IsIn(entry.Mood, Moods...) {
		errs["mood"] = "Select a valid mood."
	}

	if !govalidator.InRangeInt(entry.MoodRating, 1, 5) {
		errs["mood_rating"] = "Rating must be between 1 and 5."
	}

	if entry.Date.IsZero() {
		errs["date"] = "Enter a valid date and time."
	}

	return errs
}
