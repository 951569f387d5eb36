package server

import (
	"encoding/gob"
	"net/http"
	"time"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/config"
	"github.com/AlexTLDR/eventdeck/internal/database"
	"github.com/AlexTLDR/eventdeck/internal/gallery"
	"github.com/AlexTLDR/eventdeck/internal/geocode"
	"github.com/AlexTLDR/eventdeck/internal/i18n"
	"github.com/AlexTLDR/eventdeck/internal/mailer"
	"github.com/AlexTLDR/eventdeck/internal/notify"
	"github.com/AlexTLDR/eventdeck/internal/server/handlers"
	"github.com/AlexTLDR/eventdeck/internal/views"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const (
	authSession  = "auth-session"
	flashSession = "flash-session"
)

func init() {
	gob.Register(notify.Notification{})
}

type Server struct {
	config       *config.Config
	db           *database.DB
	backend      *backend.Client
	mailer       mailer.Sender
	geocoder     *geocode.Geocoder
	gallery      *gallery.Controller
	sessionStore *sessions.CookieStore
	router       *mux.Router
	log          zerolog.Logger
}

// Deps are the collaborators the server is built from.
type Deps struct {
	DB       *database.DB
	Backend  *backend.Client
	Mailer   mailer.Sender
	Geocoder *geocode.Geocoder
	Log      zerolog.Logger
}

func (s *Server) GetDB() *database.DB { return s.db }
func (s *Server) GetConfig() *config.Config { return s.config }
func (s *Server) GetBackend() *backend.Client { return s.backend }
func (s *Server) GetMailer() mailer.Sender { return s.mailer }
func (s *Server) GetGeocoder() *geocode.Geocoder { return s.geocoder }
func (s *Server) GetGallery() *gallery.Controller { return s.gallery }
func (s *Server) GetLogger() *zerolog.Logger { return &s.log }

// GetCurrentUser implements handlers.Server interface
func (s *Server) GetCurrentUser(r *http.Request) (string, string) {
	return s.getCurrentUser(r)
}

// Flash stores notifications for the next rendered page.
func (s *Server) Flash(w http.ResponseWriter, r *http.Request, notes ...notify.Notification) {
	if len(notes) == 0 {
		return
	}
	session, _ := s.sessionStore.Get(r, flashSession)
	for _, n := range notes {
		session.AddFlash(n)
	}
	if err := session.Save(r, w); err != nil {
		s.log.Error().Err(err).Msg("Failed to save flash session")
	}
}

// Chrome pops pending flashes and assembles the shared page data.
func (s *Server) Chrome(w http.ResponseWriter, r *http.Request, title string) views.Chrome {
	c := views.Chrome{
		Title:  title,
		Lang:   i18n.GetLanguageFromRequest(r),
		Themes: s.config.Themes,
	}
	_, c.User = s.getCurrentUser(r)

	session, _ := s.sessionStore.Get(r, flashSession)
	if flashes := session.Flashes(); len(flashes) > 0 {
		for _, f := range flashes {
			if n, ok := f.(notify.Notification); ok {
				c.Flashes = append(c.Flashes, n)
			}
		}
		if err := session.Save(r, w); err != nil {
			s.log.Error().Err(err).Msg("Failed to clear flash session")
		}
	}
	return c
}

func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		config:       cfg,
		db:           deps.DB,
		backend:      deps.Backend,
		mailer:       deps.Mailer,
		geocoder:     deps.Geocoder,
		gallery:      gallery.New(deps.Backend, cfg.UploadEvictDelay, deps.Log),
		sessionStore: sessions.NewCookieStore([]byte(cfg.SessionSecret)),
		router:       mux.NewRouter(),
		log:          deps.Log,
	}
	s.sessionStore.Options.HttpOnly = true
	s.sessionStore.Options.SameSite = http.SameSiteLaxMode

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(s.recoveryMiddleware, s.loggingMiddleware, s.languageMiddleware)

	// Static files
	fs := http.FileServer(http.Dir("./static"))
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fs))

	// Public routes
	r.HandleFunc("/", handlers.HandleHome(s)).Methods(http.MethodGet)
	r.HandleFunc("/health", handlers.HandleHealth(s)).Methods(http.MethodGet)
	r.HandleFunc("/rsvp/{id}", handlers.HandleRSVP(s)).Methods(http.MethodGet)
	r.HandleFunc("/rsvp/{id}", handlers.HandleRSVPSubmit(s)).Methods(http.MethodPost)

	// Auth routes
	r.HandleFunc("/auth/google", s.handleGoogleLogin)
	r.HandleFunc("/auth/google/callback", s.handleGoogleCallback)
	r.HandleFunc("/auth/logout", s.handleLogout)

	// Admin routes (protected)
	r.HandleFunc("/events", s.requireAuth(handlers.HandleEvents(s))).Methods(http.MethodGet)
	r.HandleFunc("/events", s.requireAuth(handlers.HandleCreateEvent(s))).Methods(http.MethodPost)
	r.HandleFunc("/events/new", s.requireAuth(handlers.HandleNewEvent(s))).Methods(http.MethodGet)
	r.HandleFunc("/events/{id}", s.requireAuth(handlers.HandleEventDetails(s))).Methods(http.MethodGet)
	r.HandleFunc("/events/{id}", s.requireAuth(handlers.HandleUpdateEvent(s))).Methods(http.MethodPost)
	r.HandleFunc("/events/{id}/edit", s.requireAuth(handlers.HandleEditEvent(s))).Methods(http.MethodGet)
	r.HandleFunc("/events/{id}/delete", s.requireAuth(handlers.HandleDeleteEvent(s))).Methods(http.MethodPost)
	r.HandleFunc("/events/{id}/rsvps.csv", s.requireAuth(handlers.HandleDownloadCSV(s))).Methods(http.MethodGet)
	r.HandleFunc("/gallery", s.requireAuth(handlers.HandleGallery(s))).Methods(http.MethodGet)
	r.HandleFunc("/gallery/upload", s.requireAuth(handlers.HandleGalleryUpload(s))).Methods(http.MethodPost)
	r.HandleFunc("/gallery/search", s.requireAuth(handlers.HandleGallerySearch(s))).Methods(http.MethodPost)
	r.HandleFunc("/admin/confirmations", s.requireAuth(handlers.HandleConfirmations(s))).Methods(http.MethodGet)
	r.HandleFunc("/admin/confirmations/{id}/resend", s.requireAuth(handlers.HandleResendConfirmation(s))).Methods(http.MethodPost)

	// JSON API (protected, CORS)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler)
	api.HandleFunc("/events", s.requireAPIAuth(handlers.HandleAPIEvents(s))).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}", s.requireAPIAuth(handlers.HandleAPIDeleteEvent(s))).Methods(http.MethodDelete)
	api.HandleFunc("/gallery", s.requireAPIAuth(handlers.HandleAPIGallery(s))).Methods(http.MethodGet)
	// Preflights must match a route for the CORS middleware to run.
	api.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("address", addr).Msg("Starting server")
	return srv.ListenAndServe()
}

// requireAuth is a middleware that checks if user is authenticated
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, _ := s.getCurrentUser(r)
		if email == "" {
			http.Redirect(w, r, "/auth/google", http.StatusSeeOther)
			return
		}

		// Check if email is in whitelist
		if !s.config.IsAdmin(email) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// requireAPIAuth is requireAuth for JSON clients: no redirects.
func (s *Server) requireAPIAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, _ := s.getCurrentUser(r)
		if email == "" || !s.config.IsAdmin(email) {
			handlers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}
