package quotes

import (
	"math/rand"
	"net/http"
	"sync"

	"github.com/gobuffalo/packr"
	"github.com/jinzhu/gorm"

	"moodjournal/render"
)

type Quotes struct {
	DB     *gorm.DB
	render *render.Render

	mu  sync.Mutex
	rng *rand.Rand
}

func New(db *gorm.DB, rn *render.Render, rng *rand.Rand) *Quotes {
	rn.AddTemplates(packr.NewBox("./templates"))

	return &Quotes{
		DB:     db,
		render: rn,
		rng:    rng,
	}
}

// Random picks one quote uniformly from qs, or nil when there are none.
func Random(qs []Quote, rng *rand.Rand) *Quote {
	if len(qs) == 0 {
		return nil
	}
	return &qs[rng.Intn(len(qs))]
}

func (c *Quotes) HomeHandler(w http.ResponseWriter, r *http.Request) {
	var all []Quote
	if err := c.DB.Find(&all).Error; err != nil {
		c.render.Error(w, r, err)
		return
	}

	c.mu.Lock()
	quote := Random(all, c.rng)
	c.mu.Unlock()

	context := render.Context{
		"quote": quote,
	}

	c.render.Template(w, r, "home.html", context)
}
