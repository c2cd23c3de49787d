package quotes

import (
	"github.com/gobuffalo/packr"
	"github.com/jinzhu/gorm"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Seed loads the bundled quotes into an empty quote table. It does
// nothing when quotes already exist.
func Seed(db *gorm.DB) error {
	var count int
	if err := db.Model(&Quote{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "could not count quotes")
	}
	if count > 0 {
		return nil
	}

	data, err := packr.NewBox("./seed").MustBytes("quotes.json")
	if err != nil {
		return errors.Wrap(err, "could not read quote seed data")
	}

	var seed []struct {
		Text   string `json:"text"`
		Author string `json:"author"`
	}
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "could not parse quote seed data")
	}

	for _, q := range seed {
		quote := Quote{
			Text:   q.Text,
			Author: q.Author,
		}
		if err := db.Create(&quote).Error; err != nil {
			return errors.Wrap(err, "could not create quote")
		}
	}

	return nil
}
