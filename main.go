package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/evalphobia/logrus_sentry"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/gobuffalo/packr"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"moodjournal/auth"
	"moodjournal/journal"
	"moodjournal/quotes"
	"moodjournal/render"
)

func main() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("port", 3000)
	port := viper.GetInt("port")

	viper.SetDefault("host", "localhost")
	host := viper.GetString("host")

	viper.SetDefault("prod", false)
	isProd := viper.GetBool("prod")

	viper.SetDefault("cookie_key", "SESSION_SECRET")
	cookieKey := viper.GetString("cookie_key")

	viper.SetDefault("csrf_key", "CSRF_SECRET_32_BYTES_LONG_VALUE!")
	csrfKey := viper.GetString("csrf_key")

	viper.SetDefault("database_url", "host=localhost user=postgres sslmode=disable password=postgres")

	log := logrus.New()

	if dsn := viper.GetString("sentry_dsn"); dsn != "" {
		hook, err := logrus_sentry.NewSentryHook(dsn, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			log.Warnf("could not configure sentry hook: %v", err)
		} else {
			log.AddHook(hook)
		}
	}

	DB, err := gorm.Open("postgres", viper.GetString("database_url"))
	if err != nil {
		log.Fatalf("could not open db: %v", err)
	}
	defer DB.Close()

	if err := DB.AutoMigrate(
		&auth.User{},
		&journal.Entry{},
		&journal.GratitudeItem{},
		&quotes.Quote{},
	).Error; err != nil {
		log.Fatalf("could not migrate db: %v", err)
	}

	if err := quotes.Seed(DB); err != nil {
		log.Fatalf("could not seed quotes: %v", err)
	}

	store := sessions.NewCookieStore([]byte(cookieKey))
	store.MaxAge(60 * 60 * 24 * 30)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = isProd

	Render := render.New(store, log, isProd)

	Auth := auth.New(DB, Render, store)
	Journal := journal.New(DB, Render, log)
	Quotes := quotes.New(DB, Render, rand.New(rand.NewSource(time.Now().UnixNano())))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(Auth.Middleware)
	r.Use(csrf.Protect([]byte(csrfKey), csrf.Secure(isProd), csrf.Path("/")))

	r.Mount("/auth", Auth.ServeMux())
	r.Mount("/entries", Journal.ServeMux())

	r.Mount("/static", http.StripPrefix("/static", http.FileServer(packr.NewBox("./static"))))

	r.Get("/", Quotes.HomeHandler)

	http.ListenAndServe(fmt.Sprintf("%s:%d", host, port), r)
}
