// Package mockapi is an in-process REST backend used for development and
// tests. It implements the collection conventions the console expects over
// a SQLite document store.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/marcus/bizdesk/internal/models"
)

const adminID = "usr-admin"

// Options configures the mock server.
type Options struct {
	Token         string // static token bound to the admin user; empty disables
	AdminEmail    string
	AdminPassword string
	CompanyID     string
	HashCost      int
	Log           *zap.Logger
}

// Server serves the mock API.
type Server struct {
	store *Store
	opts  Options
	log   *zap.Logger
}

type ctxKey struct{}

// New returns a server over store.
func New(store *Store, opts Options) *Server {
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@example.com"
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = "admin"
	}
	if opts.CompanyID == "" {
		opts.CompanyID = "co-1"
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{store: store, opts: opts, log: log}
}

// Seed fills empty lookup collections and creates the admin user.
func (s *Server) Seed(ctx context.Context) error {
	for entity, rows := range seedData {
		existing, err := s.store.List(ctx, entity)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}
		for _, row := range rows {
			if _, err := s.store.Insert(ctx, entity, models.Record(row)); err != nil {
				return err
			}
		}
	}

	if _, err := s.store.Get(ctx, "users", adminID); errors.Is(err, ErrNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.opts.AdminPassword), s.opts.HashCost)
		if err != nil {
			return errors.Wrap(err, "hash admin password")
		}
		admin := models.Record{
			"id":            adminID,
			"name":          "Administrator",
			"email":         s.opts.AdminEmail,
			"role":          string(models.RoleAdmin),
			"company":       s.opts.CompanyID,
			"language":      "en",
			"password_hash": string(hash),
		}
		if _, err := s.store.Insert(ctx, "users", admin); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if s.opts.Token != "" {
		return s.store.SaveToken(ctx, s.opts.Token, adminID)
	}
	return nil
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/api/auth/token", s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/api/me", s.handleMe)
		r.Get("/api/{entity}", s.handleList)
		r.Post("/api/{entity}", s.handleCreate)
		r.Get("/api/{entity}/{id}", s.handleGet)
		r.Patch("/api/{entity}/{id}", s.handleUpdate)
		r.Delete("/api/{entity}/{id}", s.handleDelete)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("took", time.Since(start)))
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		userID, err := s.store.TokenUser(r.Context(), strings.TrimSpace(token))
		if err != nil {
			s.writeDetail(w, http.StatusUnauthorized, "Invalid token.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func currentUserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	users, err := s.store.List(r.Context(), "users")
	if err != nil {
		s.internalError(w, err)
		return
	}
	for _, u := range users {
		if !strings.EqualFold(u.String("email"), strings.TrimSpace(body.Email)) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.String("password_hash")), []byte(body.Password)) != nil {
			break
		}
		token := uuid.NewString()
		if err := s.store.SaveToken(r.Context(), token, u.ID()); err != nil {
			s.internalError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
		return
	}
	s.writeDetail(w, http.StatusBadRequest, "Invalid email or password.")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.Get(r.Context(), "users", currentUserID(r.Context()))
	if err != nil {
		s.writeDetail(w, http.StatusUnauthorized, "Invalid token.")
		return
	}
	s.writeJSON(w, http.StatusOK, s.present(r.Context(), "users", u))
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (string, collection, bool) {
	entity := chi.URLParam(r, "entity")
	c, ok := collections[entity]
	if !ok {
		s.writeDetail(w, http.StatusNotFound, "Not found.")
	}
	return entity, c, ok
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entity, c, ok := s.collection(w, r)
	if !ok {
		return
	}
	recs, err := s.store.List(r.Context(), entity)
	if err != nil {
		s.internalError(w, err)
		return
	}

	query := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(query.Get("search")))
	results := make([]models.Record, 0, len(recs))
	for _, rec := range recs {
		if search != "" && !strings.Contains(strings.ToLower(rec.DisplayName()), search) {
			continue
		}
		if !matchesFilter(rec, query) {
			continue
		}
		results = append(results, s.present(r.Context(), entity, rec))
	}

	if c.bare {
		s.writeJSON(w, http.StatusOK, results)
		return
	}
	s.writeJSON(w, http.StatusOK, models.Page{Results: results, Count: len(results)})
}

func matchesFilter(rec models.Record, query map[string][]string) bool {
	for k, vals := range query {
		if k == "search" || k == "page_size" || len(vals) == 0 {
			continue
		}
		id, _ := rec.Ref(k)
		if id != vals[0] && rec.String(k) != vals[0] {
			return false
		}
	}
	return true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	entity, _, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, err := s.store.Get(r.Context(), entity, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		s.writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.present(r.Context(), entity, rec))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	entity, c, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	delete(rec, "id")

	if entity == "users" {
		if strings.TrimSpace(rec.String("password")) == "" {
			s.writeFields(w, map[string][]string{"password": {"This field is required."}})
			return
		}
		if rec.String("company") == "" {
			if me, err := s.store.Get(r.Context(), "users", currentUserID(r.Context())); err == nil {
				rec["company"] = me.String("company")
			}
		}
	}
	if !s.validate(w, r.Context(), entity, c, rec, "") {
		return
	}
	if err := s.hashPassword(rec); err != nil {
		s.internalError(w, err)
		return
	}

	stored, err := s.store.Insert(r.Context(), entity, rec)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, s.present(r.Context(), entity, stored))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	entity, c, ok := s.collection(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	existing, err := s.store.Get(r.Context(), entity, id)
	if errors.Is(err, ErrNotFound) {
		s.writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	patch, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		existing[k] = v
	}
	if strings.TrimSpace(existing.String("password")) == "" {
		delete(existing, "password")
	}
	if !s.validate(w, r.Context(), entity, c, existing, id) {
		return
	}
	if err := s.hashPassword(existing); err != nil {
		s.internalError(w, err)
		return
	}

	if err := s.store.Replace(r.Context(), entity, id, existing); err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.present(r.Context(), entity, existing))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	entity, _, ok := s.collection(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if entity == "users" && id == currentUserID(r.Context()) {
		s.writeMessage(w, http.StatusBadRequest, "You cannot delete your own account.")
		return
	}
	err := s.store.Delete(r.Context(), entity, id)
	if errors.Is(err, ErrNotFound) {
		s.writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) (models.Record, bool) {
	var rec models.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec == nil {
		s.writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return nil, false
	}
	return rec, true
}

// validate applies the collection rules and writes the error response when
// they fail.
func (s *Server) validate(w http.ResponseWriter, ctx context.Context, entity string, c collection, rec models.Record, selfID string) bool {
	fieldErrs := map[string][]string{}
	for _, f := range c.positive {
		raw := rec.String(f)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			fieldErrs[f] = []string{"A valid number is required."}
		} else if !d.IsPositive() {
			fieldErrs[f] = []string{"Ensure this value is greater than 0."}
		}
	}
	if len(fieldErrs) > 0 {
		s.writeFlatFields(w, fieldErrs)
		return false
	}

	if len(c.unique) == 0 {
		return true
	}
	existing, err := s.store.List(ctx, entity)
	if err != nil {
		s.internalError(w, err)
		return false
	}
	for _, f := range c.unique {
		val := strings.TrimSpace(rec.String(f))
		if val == "" {
			continue
		}
		for _, other := range existing {
			if other.ID() == selfID || !strings.EqualFold(strings.TrimSpace(other.String(f)), val) {
				continue
			}
			if c.structured {
				s.writeFields(w, map[string][]string{f: {"already exists"}})
			} else {
				s.writeMessage(w, http.StatusBadRequest,
					fmt.Sprintf("%s with this %s already exists.", strings.TrimSuffix(entity, "s"), f))
			}
			return false
		}
	}
	return true
}

func (s *Server) hashPassword(rec models.Record) error {
	pw := rec.String("password")
	delete(rec, "password")
	if pw == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), s.opts.HashCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	rec["password_hash"] = string(hash)
	return nil
}

// present strips secrets and expands references to {id, name}.
func (s *Server) present(ctx context.Context, entity string, rec models.Record) models.Record {
	out := models.Record{}
	for k, v := range rec {
		if k == "password" || k == "password_hash" {
			continue
		}
		out[k] = v
	}
	for field, target := range collections[entity].refs {
		id, label := rec.Ref(field)
		if id == "" || label != "" {
			continue
		}
		ref, err := s.store.Get(ctx, target, id)
		if err != nil {
			continue
		}
		out[field] = map[string]any{"id": id, "name": ref.DisplayName()}
	}
	return out
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error("mock api failure", zap.Error(err))
	s.writeDetail(w, http.StatusInternalServerError, "Internal server error.")
}
