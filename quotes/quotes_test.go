package quotes

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodjournal/render"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Quote{}).Error)
	return db
}

func testQuotes(t *testing.T, db *gorm.DB) *Quotes {
	store := sessions.NewCookieStore([]byte("test-secret"))
	rn := render.New(store, logrus.New(), false)
	return New(db, rn, rand.New(rand.NewSource(1)))
}

func TestRandomReturnsNilForEmpty(t *testing.T) {
	assert.Nil(t, Random(nil, rand.New(rand.NewSource(1))))
	assert.Nil(t, Random([]Quote{}, rand.New(rand.NewSource(1))))
}

func TestRandomPicksFromCollection(t *testing.T) {
	qs := []Quote{
		{Text: "one"},
		{Text: "two"},
		{Text: "three"},
	}

	rng := rand.New(rand.NewSource(1))
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		q := Random(qs, rng)
		require.NotNil(t, q)
		seen[q.Text] = true
	}
	assert.Len(t, seen, 3, "every quote should eventually be picked")
}

func TestRandomSingleQuote(t *testing.T) {
	qs := []Quote{{Text: "only"}}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		assert.Equal(t, "only", Random(qs, rng).Text)
	}
}

func TestRandomIsDeterministicForSeed(t *testing.T) {
	qs := []Quote{{Text: "one"}, {Text: "two"}, {Text: "three"}}

	first := Random(qs, rand.New(rand.NewSource(7)))
	second := Random(qs, rand.New(rand.NewSource(7)))
	assert.Equal(t, first.Text, second.Text)
}

func TestDisplayTruncatesLongText(t *testing.T) {
	long := Quote{Text: strings.Repeat("a", 51)}
	assert.Equal(t, strings.Repeat("a", 50)+"...", long.Display())

	exact := Quote{Text: strings.Repeat("a", 50)}
	assert.Equal(t, strings.Repeat("a", 50), exact.Display())

	short := Quote{Text: "short"}
	assert.Equal(t, "short", short.Display())
}

func TestDisplayAppendsAuthor(t *testing.T) {
	q := Quote{Text: "Wisdom.", Author: "Tester"}
	assert.Equal(t, "Wisdom. - Tester", q.Display())

	anon := Quote{Text: "Wisdom."}
	assert.Equal(t, "Wisdom.", anon.Display())
}

func TestSeedLoadsQuotesOnce(t *testing.T) {
	db := testDB(t)

	require.NoError(t, Seed(db))

	var count int
	require.NoError(t, db.Model(&Quote{}).Count(&count).Error)
	assert.Equal(t, 30, count)

	// Seeding again is a no-op.
	require.NoError(t, Seed(db))
	require.NoError(t, db.Model(&Quote{}).Count(&count).Error)
	assert.Equal(t, 30, count)
}

func TestHomeShowsQuote(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&Quote{Text: "Test wisdom.", Author: "Tester"}).Error)

	c := testQuotes(t, db)

	w := httptest.NewRecorder()
	c.HomeHandler(w, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Test wisdom.")
	assert.Contains(t, w.Body.String(), "Tester")
}

func TestHomeWithoutQuotesStillRenders(t *testing.T) {
	c := testQuotes(t, testDB(t))

	w := httptest.NewRecorder()
	c.HomeHandler(w, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "blockquote")
}
