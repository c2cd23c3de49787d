package journal

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

// GratitudeSlots is the number of blank gratitude fields offered on the
// creation form. The edit form offers none, only the current items.
const GratitudeSlots = 3

const (
	dateInputLayout        = "2006-01-02T15:04"
	dateInputSecondsLayout = "2006-01-02T15:04:05"
)

// maxGratitudeFields caps how many submitted slots are read back.
const maxGratitudeFields = 1000

// EntryForm carries the user's raw input through validation so nothing
// is lost when the form re-renders with errors.
type EntryForm struct {
	Date       string
	Mood       string
	MoodRating string
	Title      string
	Content    string
	Items      []string
	Errors     ValidationErrors

	date   time.Time
	rating int
}

// NewEntryForm returns a blank creation form: date prefilled with the
// current time, three empty gratitude slots.
func NewEntryForm() *EntryForm {
	return &EntryForm{
		Date:   time.Now().Format(dateInputLayout),
		Items:  make([]string, GratitudeSlots),
		Errors: ValidationErrors{},
	}
}

// FormFromEntry prefills an edit form. Only the entry's current
// gratitude items are offered, without extra blank slots.
func FormFromEntry(entry *Entry) *EntryForm {
	items := make([]string, len(entry.GratitudeItems))
	for i, item := range entry.GratitudeItems {
		items[i] = item.ItemText
	}

	return &EntryForm{
		Date:       entry.Date.Format(dateInputLayout),
		Mood:       entry.Mood,
		MoodRating: strconv.Itoa(entry.MoodRating),
		Title:      entry.Title,
		Content:    entry.Content,
		Items:      items,
		Errors:     ValidationErrors{},
	}
}

// ParseEntryForm reads a submitted form. The number of gratitude slots
// comes from the gratitude_total field rendered with the form.
func ParseEntryForm(r *http.Request) *EntryForm {
	form := &EntryForm{
		Date:       r.FormValue("date"),
		Mood:       r.FormValue("mood"),
		MoodRating: r.FormValue("mood_rating"),
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
		Errors:     ValidationErrors{},
	}

	total, err := strconv.Atoi(r.FormValue("gratitude_total"))
	if err != nil || total < 0 {
		total = GratitudeSlots
	}
	if total > maxGratitudeFields {
		total = maxGratitudeFields
	}

	form.Items = make([]string, total)
	for i := 0; i < total; i++ {
		form.Items[i] = r.FormValue(fmt.Sprintf("gratitude_%d", i))
	}

	return form
}

// Validate checks the submitted values and fills Errors. It returns
// true when the form is clean.
func (f *EntryForm) Validate() bool {
	f.Errors = ValidationErrors{}

	if strings.TrimSpace(f.Title) == "" {
		f.Errors["title"] = "This field is required."
	} else if !govalidator.StringLength(f.Title, "1", "200") {
		f.Errors["title"] = "Keep the title under 200 characters."
	}

	if strings.TrimSpace(f.Content) == "" {
		f.Errors["content"] = "This field is required."
	}

	if !govalidator.IsIn(f.Mood, Moods...) {
		f.Errors["mood"] = "Select a valid mood."
	}

	rating, err := strconv.Atoi(f.MoodRating)
	if err != nil {
		f.Errors["mood_rating"] = "Enter a whole number."
	} else if !govalidator.InRangeInt(rating, 1, 5) {
		f.Errors["mood_rating"] = "Rating must be between 1 and 5."
	} else {
		f.rating = rating
	}

	date, err := time.Parse(dateInputLayout, f.Date)
	if err != nil {
		date, err = time.Parse(dateInputSecondsLayout, f.Date)
	}
	if err != nil {
		f.Errors["date"] = "Enter a valid date and time."
	} else {
		f.date = date
	}

	for i, item := range f.Items {
		if !govalidator.StringLength(item, "0", "255") {
			f.Errors[fmt.Sprintf("gratitude_%d", i)] = "Keep it under 255 characters."
		}
	}

	return len(f.Errors) == 0
}

// Entry returns the validated field values. Only meaningful after a
// successful Validate.
func (f *EntryForm) Entry() Entry {
	return Entry{
		Date:       f.date,
		Mood:       f.Mood,
		MoodRating: f.rating,
		Title:      f.Title,
		Content:    f.Content,
	}
}

func (f *EntryForm) ItemTexts() []string {
	return f.Items
}
