package journal

import (
	"strings"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

const PerPage = 10

// ErrNotFound covers both a nonexistent entry and an entry owned by
// someone else, so existence is never leaked across users.
var ErrNotFound = errors.New("entry not found")

// EntryStore owns Entry and GratitudeItem records. Every operation is
// scoped to the owning user.
type EntryStore struct {
	DB *gorm.DB
}

func NewEntryStore(db *gorm.DB) *EntryStore {
	return &EntryStore{DB: db}
}

// Create persists a new entry for userID, ignoring any owner already
// set on the value. Blank gratitude slots are discarded. The entry and
// its items are written in one transaction.
func (s *EntryStore) Create(userID uint, entry Entry, items []string) (*Entry, error) {
	entry.ID = 0
	entry.UserID = userID
	entry.GratitudeItems = nil

	if errs := ValidateEntry(entry); len(errs) > 0 {
		return nil, errs
	}

	tx := s.DB.Begin()
	if tx.Error != nil {
		return nil, errors.Wrap(tx.Error, "could not begin transaction")
	}

	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "could not create entry")
	}

	if err := createItems(tx, &entry, items); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.Wrap(err, "could not commit entry")
	}

	return &entry, nil
}

// List returns one page of the user's entries, newest date first, and
// the total number of matching entries. A non-empty search filters to
// entries whose title, content, mood or any gratitude item contains the
// term, case-insensitively, with each entry appearing once.
func (s *EntryStore) List(userID uint, search string, page int) ([]Entry, int, error) {
	if page < 1 {
		page = 1
	}

	query := s.DB.Model(&Entry{}).Where("entries.user_id = ?", userID)

	var total int
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.
			Joins("LEFT JOIN gratitude_items ON gratitude_items.entry_id = entries.id AND gratitude_items.deleted_at IS NULL").
			Where(
				"LOWER(entries.title) LIKE ? OR LOWER(entries.content) LIKE ? OR LOWER(entries.mood) LIKE ? OR LOWER(gratitude_items.item_text) LIKE ?",
				pattern, pattern, pattern, pattern,
			)

		row := query.Select("COUNT(DISTINCT entries.id)").Row()
		if err := row.Scan(&total); err != nil {
			return nil, 0, errors.Wrap(err, "could not count entries")
		}
		query = query.Select("DISTINCT entries.*")
	} else {
		if err := query.Count(&total).Error; err != nil {
			return nil, 0, errors.Wrap(err, "could not count entries")
		}
	}

	var entries []Entry
	err := query.
		Preload("GratitudeItems").
		Order("entries.date desc").
		Offset((page - 1) * PerPage).
		Limit(PerPage).
		Find(&entries).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not list entries")
	}

	return entries, total, nil
}

func (s *EntryStore) Get(userID, id uint) (*Entry, error) {
	var entry Entry
	query := s.DB.
		Preload("GratitudeItems").
		Where("user_id = ?", userID).
		First(&entry, id)
	if query.RecordNotFound() {
		return nil, ErrNotFound
	}
	if query.Error != nil {
		return nil, errors.Wrap(query.Error, "could not get entry")
	}
	return &entry, nil
}

// Update replaces the entry's mutable fields and swaps the full
// gratitude set for the submitted one; an empty set clears all items.
// Owner and creation time never change.
func (s *EntryStore) Update(userID, id uint, fields Entry, items []string) (*Entry, error) {
	entry, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	entry.Date = fields.Date
	entry.Mood = fields.Mood
	entry.MoodRating = fields.MoodRating
	entry.Title = fields.Title
	entry.Content = fields.Content
	entry.GratitudeItems = nil

	if errs := ValidateEntry(*entry); len(errs) > 0 {
		return nil, errs
	}

	tx := s.DB.Begin()
	if tx.Error != nil {
		return nil, errors.Wrap(tx.Error, "could not begin transaction")
	}

	if err := tx.Save(entry).Error; err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "could not update entry")
	}

	if err := tx.Where("entry_id = ?", entry.ID).Delete(&GratitudeItem{}).Error; err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "could not clear gratitude items")
	}

	if err := createItems(tx, entry, items); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.Wrap(err, "could not commit entry")
	}

	return entry, nil
}

// Delete removes the entry and, transitively, its gratitude items.
func (s *EntryStore) Delete(userID, id uint) error {
	entry, err := s.Get(userID, id)
	if err != nil {
		return err
	}

	tx := s.DB.Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "could not begin transaction")
	}

	if err := tx.Where("entry_id = ?", entry.ID).Delete(&GratitudeItem{}).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "could not delete gratitude items")
	}

	if err := tx.Delete(entry).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "could not delete entry")
	}

	return errors.Wrap(tx.Commit().Error, "could not commit delete")
}

func createItems(tx *gorm.DB, entry *Entry, items []string) error {
	for _, text := range items {
		if strings.TrimSpace(text) == "" {
			continue
		}
		item := GratitudeItem{
			EntryID:  entry.ID,
			ItemText: text,
		}
		if err := tx.Create(&item).Error; err != nil {
			return errors.Wrap(err, "could not create gratitude item")
		}
		entry.GratitudeItems = append(entry.GratitudeItems, item)
	}
	return nil
}
