// Package devstub is a development stand-in for the municipal backend. The
// real backend is an external collaborator with a fixed contract; the stub
// implements enough of that contract (auth, collections, complaints,
// attendance) that the client SDK and CLI can be exercised end-to-end, and it
// is the server the integration tests run against.
package devstub

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/WasteWatch/WW-Client/internal/localdb"
)

const sessionTTL = 24 * time.Hour

type contextKey string

const ctxUserKey contextKey = "stubUser"

// Server is the stub backend.
type Server struct {
	db *gorm.DB
}

// Open creates a stub backed by the SQLite database at path.
func Open(path string) (*Server, error) {
	db, err := localdb.Open(path)
	if err != nil {
		return nil, err
	}
	return New(db)
}

// New wraps an existing database connection.
func New(db *gorm.DB) (*Server, error) {
	if err := db.AutoMigrate(&User{}, &Session{}, &Complaint{}, &CollectionRecord{}, &Attendance{}); err != nil {
		return nil, fmt.Errorf("migrate stub tables: %w", err)
	}
	return &Server{db: db}, nil
}

// SeedUser creates an account directly, for tests and local bootstrap.
func (s *Server) SeedUser(name, email, password, role string) (*User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{Name: name, Email: email, HashedPassword: string(hashed), Role: role}
	if err := s.db.Create(u).Error; err != nil {
		return nil, fmt.Errorf("seed user: %w", err)
	}
	return u, nil
}

// Router mounts the stubbed contract.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)

	r.Get("/api/health", s.handleHealth)
	r.Head("/api/health", s.handleHealth)

	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)
	r.Get("/api/auth/me", s.withAuth(s.handleMe))
	r.Post("/api/auth/logout", s.withAuth(s.handleLogout))

	r.Post("/api/employee/collections", s.withAuth(s.handleSubmitCollection))
	r.Get("/api/employee/collections/today", s.withAuth(s.handleTodayCollections))
	r.Post("/api/employee/attendance/mark", s.withAuth(s.handleMarkAttendance))
	r.Get("/api/employee/attendance/today", s.withAuth(s.handleTodayAttendance))
	r.Get("/api/employee/routes/today", s.withAuth(s.handleTodayRoutes))

	r.Post("/api/citizen/complaint", s.withAuth(s.handleCreateComplaint))
	r.Get("/api/citizen/complaints", s.withAuth(s.handleMyComplaints))

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// withAuth resolves the bearer token to a user, rejecting missing, unknown
// and expired sessions.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		var sess Session
		if err := s.db.First(&sess, "token = ?", token).Error; err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid session", nil)
			return
		}
		if sess.ExpiresAt.Before(time.Now()) {
			writeError(w, http.StatusUnauthorized, "Session expired", nil)
			return
		}

		var user User
		if err := s.db.First(&user, "id = ?", sess.UserID).Error; err != nil {
			writeError(w, http.StatusUnauthorized, "Unknown user", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func userFrom(ctx context.Context) *User {
	u, _ := ctx.Value(ctxUserKey).(*User)
	return u
}

// newSession mints a bearer token for the user.
func (s *Server) newSession(userID int64) (string, error) {
	sess := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	if err := s.db.Create(&sess).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sess.Token, nil
}
