package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi"
	"github.com/gobuffalo/packr"
	"github.com/gorilla/sessions"
	"github.com/jinzhu/gorm"

	"moodjournal/render"
)

const LoginURL = "/auth/login"

type Auth struct {
	DB     *gorm.DB
	render *render.Render
	store  sessions.Store
}

func New(db *gorm.DB, rn *render.Render, store sessions.Store) *Auth {
	rn.AddTemplates(packr.NewBox("./templates"))

	return &Auth{
		DB:     db,
		render: rn,
		store:  store,
	}
}

// Middleware resolves the logged in user from the session and puts it
// in the request context. Requests with no or invalid session continue
// as anonymous.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := a.store.Get(r, render.SessionName)
		if err == nil {
			if id, ok := session.Values["user_id"].(uint); ok {
				var user User
				if err := a.DB.First(&user, id).Error; err == nil {
					r = r.WithContext(WithUser(r.Context(), user))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser redirects anonymous requests to the login page with a
// next parameter pointing back to the requested URL.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			http.Redirect(w, r, LoginURL+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, "user", user)
}

func CurrentUser(r *http.Request) *User {
	if user, ok := r.Context().Value("user").(User); ok {
		return &user
	}
	return nil
}

func (a *Auth) ServeMux() http.Handler {
	router := chi.NewRouter()

	router.Get("/login", a.LoginHandler)
	router.Post("/login", a.LoginHandler)
	router.Get("/logout", a.LogoutHandler)

	return router
}

func (a *Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")

	if r.Method == "POST" {
		next = r.FormValue("next")

		var user User
		query := a.DB.Where("username = ?", r.FormValue("username")).First(&user)
		if query.Error != nil && !query.RecordNotFound() {
			a.render.Error(w, r, query.Error)
			return
		}

		if query.RecordNotFound() || !user.CheckPassword(r.FormValue("password")) {
			if err := a.render.AddFlash(w, r, render.FlashError("Invalid username or password.")); err != nil {
				a.render.Error(w, r, err)
				return
			}
		} else {
			session, err := a.store.Get(r, render.SessionName)
			if err != nil {
				a.render.Error(w, r, err)
				return
			}
			session.Values["user_id"] = user.ID
			if err := session.Save(r, w); err != nil {
				a.render.Error(w, r, err)
				return
			}

			http.Redirect(w, r, safeNext(next), http.StatusFound)
			return
		}
	}

	context := render.Context{
		"next":    next,
		"subpage": "Log in",
	}

	a.render.Template(w, r, "login.html", context)
}

func (a *Auth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, err := a.store.Get(r, render.SessionName)
	if err == nil {
		delete(session.Values, "user_id")
		session.AddFlash(render.FlashInfo("You have been logged out."))
		if err := session.Save(r, w); err != nil {
			a.render.Error(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// safeNext only follows local redirect targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/entries"
	}
	return next
}
