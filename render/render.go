package render

import (
	"bytes"
	"io"
	"net/http"

	"github.com/flosch/pongo2"
	"github.com/gobuffalo/packr"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const SessionName = "moodjournal"

type Context map[string]interface{}

type Render struct {
	set          *pongo2.TemplateSet
	loader       *boxLoader
	store        sessions.Store
	log          *logrus.Logger
	contextFuncs []func(r *http.Request, ctx Context)
}

func New(store sessions.Store, log *logrus.Logger, isProd bool) *Render {
	loader := &boxLoader{}
	set := pongo2.NewSet("moodjournal", loader)
	set.Debug = !isProd

	r := &Render{
		set:    set,
		loader: loader,
		store:  store,
		log:    log,
	}
	r.AddTemplates(packr.NewBox("./templates"))

	return r
}

func (rn *Render) AddTemplates(box packr.Box) {
	rn.loader.boxes = append(rn.loader.boxes, box)
}

// AddContextFunc registers a function that can add values to the context
// of every rendered template.
func (rn *Render) AddContextFunc(f func(r *http.Request, ctx Context)) {
	rn.contextFuncs = append(rn.contextFuncs, f)
}

func (rn *Render) Template(w http.ResponseWriter, r *http.Request, name string, ctx Context) {
	rn.template(w, r, name, ctx, http.StatusOK)
}

func (rn *Render) NotFound(w http.ResponseWriter, r *http.Request) {
	rn.template(w, r, "404.html", Context{}, http.StatusNotFound)
}

func (rn *Render) Forbidden(w http.ResponseWriter, r *http.Request) {
	rn.template(w, r, "403.html", Context{}, http.StatusForbidden)
}

func (rn *Render) Error(w http.ResponseWriter, r *http.Request, err error) {
	rn.log.Errorf("%+v", err)
	rn.template(w, r, "500.html", Context{}, http.StatusInternalServerError)
}

func (rn *Render) AddFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	session, err := rn.store.Get(r, SessionName)
	if err != nil {
		return errors.Wrap(err, "could not get session")
	}
	session.AddFlash(flash)
	return errors.Wrap(session.Save(r, w), "could not save session")
}

func (rn *Render) template(w http.ResponseWriter, r *http.Request, name string, ctx Context, status int) {
	if ctx == nil {
		ctx = Context{}
	}

	if user := r.Context().Value("user"); user != nil {
		ctx["user"] = user
	}
	ctx["csrf_field"] = csrf.TemplateField(r)

	// Flashes must be consumed before the body is written so the cleared
	// session cookie makes it into the response headers.
	if session, err := rn.store.Get(r, SessionName); err == nil {
		flashes := []Flash{}
		for _, f := range session.Flashes() {
			if flash, ok := f.(Flash); ok {
				flashes = append(flashes, flash)
			}
		}
		ctx["flashes"] = flashes
		if err := session.Save(r, w); err != nil {
			rn.log.Errorf("could not save session: %v", err)
		}
	}

	for _, f := range rn.contextFuncs {
		f(r, ctx)
	}

	tpl, err := rn.set.FromCache(name)
	if err != nil {
		rn.log.Errorf("could not load template %s: %v", name, err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	out, err := tpl.ExecuteBytes(pongo2.Context(ctx))
	if err != nil {
		rn.log.Errorf("could not render template %s: %v", name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(out)
}

// boxLoader resolves pongo2 template names against packr boxes, so
// {% extends "base.html" %} works across feature packages.
type boxLoader struct {
	boxes []packr.Box
}

func (l *boxLoader) Abs(base, name string) string {
	return name
}

func (l *boxLoader) Get(path string) (io.Reader, error) {
	for _, box := range l.boxes {
		if box.Has(path) {
			return bytes.NewReader(box.Bytes(path)), nil
		}
	}
	return nil, errors.Errorf("template %s not found", path)
}
