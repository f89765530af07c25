package devstub

import (
	"encoding/json"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError emits the backend's error envelope: {message, errors?}.
func writeError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	body := map[string]any{"message": message}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	writeJSON(w, status, body)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(payload.Name) == "" {
		fields["name"] = "name is required"
	}
	if _, err := mail.ParseAddress(payload.Email); err != nil {
		fields["email"] = "a valid email is required"
	}
	if len(payload.Password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}
	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "Registration failed validation", fields)
		return
	}
	if payload.Role == "" {
		payload.Role = "CITIZEN"
	}

	var existing User
	if err := s.db.First(&existing, "email = ?", payload.Email).Error; err == nil {
		writeError(w, http.StatusConflict, "An account with this email already exists", nil)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error hashing password", nil)
		return
	}

	user := User{
		Name:           payload.Name,
		Email:          payload.Email,
		HashedPassword: string(hashed),
		Role:           payload.Role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register user", nil)
		return
	}

	token, err := s.newSession(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session", nil)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"token": token, "user": user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	var user User
	if err := s.db.First(&user, "email = ?", creds.Email).Error; err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(creds.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := s.newSession(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token, _ := strings.CutPrefix(header, "Bearer ")
	s.db.Delete(&Session{}, "token = ?", token)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// handleSubmitCollection accepts the multipart collection submission. A
// repeated X-Request-Id returns the original record instead of creating a
// duplicate, which is what makes the client's at-least-once replay safe.
func (s *Server) handleSubmitCollection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form data", nil)
		return
	}

	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	var existing CollectionRecord
	if err := s.db.First(&existing, "request_id = ?", requestID).Error; err == nil {
		writeJSON(w, http.StatusOK, existing)
		return
	}

	waypointID, err := strconv.ParseInt(r.FormValue("waypointId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Collection failed validation",
			map[string]string{"waypointId": "waypointId must be an integer"})
		return
	}

	ts, err := time.Parse(time.RFC3339, r.FormValue("timestamp"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Collection failed validation",
			map[string]string{"timestamp": "timestamp must be RFC 3339"})
		return
	}

	photo, _, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Collection failed validation",
			map[string]string{"photo": "photo attachment is required"})
		return
	}
	defer photo.Close()
	photoBytes, _ := io.Copy(io.Discard, photo)

	rec := CollectionRecord{
		UserID:     userFrom(r.Context()).ID,
		RequestID:  requestID,
		WaypointID: waypointID,
		Timestamp:  ts,
		PhotoBytes: photoBytes,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record collection", nil)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleTodayCollections(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	since := time.Now().Truncate(24 * time.Hour)

	var recs []CollectionRecord
	s.db.Where("user_id = ? AND timestamp >= ?", user.ID, since).Find(&recs)
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		writeError(w, http.StatusBadRequest, "status query parameter is required", nil)
		return
	}

	att := Attendance{
		UserID:  userFrom(r.Context()).ID,
		Date:    time.Now().Format("2006-01-02"),
		Status:  status,
		Remarks: r.URL.Query().Get("remarks"),
	}
	if err := s.db.Create(&att).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to mark attendance", nil)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

func (s *Server) handleTodayAttendance(w http.ResponseWriter, r *http.Request) {
	var att Attendance
	err := s.db.Where("user_id = ? AND date = ?",
		userFrom(r.Context()).ID, time.Now().Format("2006-01-02")).
		First(&att).Error
	if err == gorm.ErrRecordNotFound {
		writeError(w, http.StatusNotFound, "No attendance marked today", nil)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

// handleTodayRoutes returns an empty list; the stub does not model route
// assignment, only the endpoints the client exercises during field work.
func (s *Server) handleTodayRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []any{})
}

func (s *Server) handleCreateComplaint(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Category    string `json:"category"`
		Description string `json:"description"`
		Area        string `json:"area"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}
	if strings.TrimSpace(payload.Description) == "" {
		writeError(w, http.StatusBadRequest, "Complaint failed validation",
			map[string]string{"description": "description is required"})
		return
	}

	c := Complaint{
		UserID:      userFrom(r.Context()).ID,
		Category:    payload.Category,
		Description: payload.Description,
		Area:        payload.Area,
		Status:      "OPEN",
		CreatedAt:   time.Now(),
	}
	if err := s.db.Create(&c).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to file complaint", nil)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleMyComplaints(w http.ResponseWriter, r *http.Request) {
	var complaints []Complaint
	s.db.Where("user_id = ?", userFrom(r.Context()).ID).
		Order("created_at desc").
		Find(&complaints)
	writeJSON(w, http.StatusOK, complaints)
}
