package journal

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/gobuffalo/packr"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"moodjournal/auth"
	"moodjournal/render"
)

type Journal struct {
	store  *EntryStore
	render *render.Render
	log    *logrus.Logger
}

func New(db *gorm.DB, rn *render.Render, log *logrus.Logger) *Journal {
	rn.AddTemplates(packr.NewBox("./templates"))

	rn.AddContextFunc(func(r *http.Request, ctx render.Context) {
		ctx["moods"] = Moods
	})

	return &Journal{
		store:  NewEntryStore(db),
		render: rn,
		log:    log,
	}
}

func (c *Journal) ServeMux() http.Handler {
	router := chi.NewRouter()

	router.Get("/create/success", c.SuccessHandler)

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Get("/", c.ListHandler)

		r.Get("/create", c.CreateHandler)
		r.Post("/create", c.CreateHandler)

		r.Route("/{entryID:[0-9]+}", func(r chi.Router) {
			r.Get("/", c.ViewHandler)

			r.Get("/edit", c.EditHandler)
			r.Post("/edit", c.EditHandler)

			r.Get("/delete", c.DeleteHandler)
			r.Post("/delete", c.DeleteHandler)
		})
	})

	return router
}

func (c *Journal) ListHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r)

	search := r.URL.Query().Get("search")

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		var err error
		page, err = strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			page = 1
		}
	}

	entries, total, err := c.store.List(user.ID, search, page)
	if err != nil {
		c.render.Error(w, r, err)
		return
	}

	pages := make([]int, (total+PerPage-1)/PerPage)
	for i := range pages {
		pages[i] = i + 1
	}

	context := render.Context{
		"entries": entries,
		"search":  search,
		"page":    page,
		"pages":   pages,
		"subpage": "My entries",
	}

	c.render.Template(w, r, "entry_list.html", context)
}

func (c *Journal) ViewHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r)

	entry, err := c.entryFromURL(r, user.ID)
	if err != nil {
		c.notFoundOrError(w, r, err)
		return
	}

	context := render.Context{
		"entry":   entry,
		"subpage": entry.Title,
	}

	c.render.Template(w, r, "entry_detail.html", context)
}

func (c *Journal) CreateHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r)

	form := NewEntryForm()

	if r.Method == "POST" {
		form = ParseEntryForm(r)
		if form.Validate() {
			_, err := c.store.Create(user.ID, form.Entry(), form.ItemTexts())
			if verrs, ok := err.(ValidationErrors); ok {
				for field, msg := range verrs {
					form.Errors[field] = msg
				}
			} else if err != nil {
				c.render.Error(w, r, err)
				return
			} else {
				if err := c.render.AddFlash(w, r, render.FlashSuccess("Entry saved!")); err != nil {
					c.render.Error(w, r, err)
					return
				}
				http.Redirect(w, r, "/entries/create/success", http.StatusFound)
				return
			}
		}
	}

	context := render.Context{
		"form":    form,
		"subpage": "New entry",
	}

	c.render.Template(w, r, "entry_form.html", context)
}

func (c *Journal) EditHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r)

	entry, err := c.entryFromURL(r, user.ID)
	if err != nil {
		c.notFoundOrError(w, r, err)
		return
	}

	form := FormFromEntry(entry)

	if r.Method == "POST" {
		form = ParseEntryForm(r)
		if form.Validate() {
			_, err := c.store.Update(user.ID, entry.ID, form.Entry(), form.ItemTexts())
			if verrs, ok := err.(ValidationErrors); ok {
				for field, msg := range verrs {
					form.Errors[field] = msg
				}
			} else if err != nil {
				c.notFoundOrError(w, r, err)
				return
			} else {
				if err := c.render.AddFlash(w, r, render.FlashSuccess("Entry updated!")); err != nil {
					c.render.Error(w, r, err)
					return
				}
				http.Redirect(w, r, fmt.Sprintf("/entries/%d", entry.ID), http.StatusFound)
				return
			}
		}
	}

	context := render.Context{
		"form":    form,
		"entry":   entry,
		"subpage": "Edit entry",
	}

	c.render.Template(w, r, "entry_form.html", context)
}

func (c *Journal) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r)

	entry, err := c.entryFromURL(r, user.ID)
	if err != nil {
		c.notFoundOrError(w, r, err)
		return
	}

	if r.Method == "POST" {
		if err := c.store.Delete(user.ID, entry.ID); err != nil {
			if errors.Cause(err) == ErrNotFound {
				c.render.NotFound(w, r)
				return
			}
			// A failed delete is reported, not retried.
			c.log.Errorf("could not delete entry %d: %+v", entry.ID, err)
			if err := c.render.AddFlash(w, r, render.FlashError("Could not delete the entry. Please try again.")); err != nil {
				c.render.Error(w, r, err)
				return
			}
			http.Redirect(w, r, "/entries", http.StatusFound)
			return
		}

		if err := c.render.AddFlash(w, r, render.FlashSuccess("Entry deleted.")); err != nil {
			c.render.Error(w, r, err)
			return
		}
		http.Redirect(w, r, "/entries", http.StatusFound)
		return
	}

	context := render.Context{
		"entry":   entry,
		"subpage": "Delete entry",
	}

	c.render.Template(w, r, "entry_confirm_delete.html", context)
}

func (c *Journal) SuccessHandler(w http.ResponseWriter, r *http.Request) {
	c.render.Template(w, r, "create_success.html", render.Context{
		"subpage": "Entry saved",
	})
}

func (c *Journal) entryFromURL(r *http.Request, userID uint) (*Entry, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "entryID"))
	if err != nil {
		return nil, ErrNotFound
	}
	return c.store.Get(userID, uint(id))
}

func (c *Journal) notFoundOrError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Cause(err) == ErrNotFound {
		c.render.NotFound(w, r)
		return
	}
	c.render.Error(w, r, err)
}
