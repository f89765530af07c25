package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WasteWatch/WW-Client/internal/api"
)

// TestBearerTokenAttached verifies the current token rides every request and
// an empty token sends no Authorization header at all.
func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"id": 1})
	}))
	t.Cleanup(srv.Close)

	token := "T1"
	client := api.NewClient(srv.URL, func() string { return token })

	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "Bearer T1" {
		t.Errorf("expected Bearer T1, got %q", gotAuth)
	}

	token = ""
	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("anonymous request must carry no Authorization header, got %q", gotAuth)
	}
}

// TestErrorTaxonomy verifies each backend status maps to its typed error.
func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"message":"Invalid session"}`,
			check: func(t *testing.T, err error) {
				var ae *api.AuthError
				if !errors.As(err, &ae) {
					t.Fatalf("expected *AuthError, got %T: %v", err, err)
				}
				if ae.Message != "Invalid session" {
					t.Errorf("message not carried through: %q", ae.Message)
				}
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   `{"message":"Not allowed"}`,
			check: func(t *testing.T, err error) {
				var ae *api.AuthError
				if !errors.As(err, &ae) {
					t.Fatalf("expected *AuthError, got %T: %v", err, err)
				}
			},
		},
		{
			name:   "conflict",
			status: http.StatusConflict,
			body:   `{"message":"An account with this email already exists"}`,
			check: func(t *testing.T, err error) {
				var ce *api.ConflictError
				if !errors.As(err, &ce) {
					t.Fatalf("expected *ConflictError, got %T: %v", err, err)
				}
			},
		},
		{
			name:   "validation with fields",
			status: http.StatusBadRequest,
			body:   `{"message":"Registration failed validation","errors":{"email":"a valid email is required"}}`,
			check: func(t *testing.T, err error) {
				var ve *api.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected *ValidationError, got %T: %v", err, err)
				}
				if ve.Fields["email"] != "a valid email is required" {
					t.Errorf("field errors not carried through: %+v", ve.Fields)
				}
			},
		},
		{
			name:   "unprocessable entity",
			status: http.StatusUnprocessableEntity,
			body:   `{"message":"bad payload"}`,
			check: func(t *testing.T, err error) {
				var ve *api.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected *ValidationError, got %T: %v", err, err)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			t.Cleanup(srv.Close)

			client := api.NewClient(srv.URL, func() string { return "T1" })
			_, err := client.Register(context.Background(), api.RegisterPayload{})
			if err == nil {
				t.Fatal("expected an error")
			}
			tc.check(t, err)
		})
	}
}

// TestLoginWrapsTransportFailure verifies an unreachable backend still
// surfaces as *AuthError, so login has a single failure shape.
func TestLoginWrapsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := api.NewClient(srv.URL, func() string { return "" })
	_, err := client.Login(context.Background(), api.Credentials{Email: "x@example.com", Password: "p"})

	var ae *api.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *AuthError for transport failure, got %T: %v", err, err)
	}
}

// TestSubmitCollectionFailureIsSubmissionError verifies the raw-post path
// wraps failures with the endpoint and status attached.
func TestSubmitCollectionFailureIsSubmissionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Session expired"}`)
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, func() string { return "stale" })
	err := client.SubmitCollection(context.Background(), "multipart/form-data", []byte("body"))

	var se *api.SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SubmissionError, got %T: %v", err, err)
	}
	if se.Endpoint != api.CollectionsEndpoint {
		t.Errorf("endpoint not recorded: %q", se.Endpoint)
	}
	if se.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", se.StatusCode)
	}
}

// TestBuildCollectionForm verifies the serialized form carries the photo
// bytes, the waypoint id and an RFC 3339 timestamp.
func TestBuildCollectionForm(t *testing.T) {
	photo := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02}
	takenAt := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)

	contentType, body, err := api.BuildCollectionForm(photo, "waypoint.jpg", 42, takenAt)
	if err != nil {
		t.Fatalf("BuildCollectionForm: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("unexpected content type %q: %v", contentType, err)
	}

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })

	if got := form.Value["waypointId"]; len(got) != 1 || got[0] != "42" {
		t.Errorf("waypointId field: %v", got)
	}
	ts := form.Value["timestamp"]
	if len(ts) != 1 {
		t.Fatalf("timestamp field: %v", ts)
	}
	if _, err := time.Parse(time.RFC3339, ts[0]); err != nil {
		t.Errorf("timestamp %q is not RFC 3339: %v", ts[0], err)
	}

	files := form.File["photo"]
	if len(files) != 1 {
		t.Fatalf("expected one photo part, got %d", len(files))
	}
	if files[0].Filename != "waypoint.jpg" {
		t.Errorf("photo filename: %q", files[0].Filename)
	}
	f, err := files[0].Open()
	if err != nil {
		t.Fatalf("open photo part: %v", err)
	}
	defer f.Close()
	got, _ := io.ReadAll(f)
	if string(got) != string(photo) {
		t.Error("photo bytes changed in serialization")
	}
}

// TestScheduleNormalizesAreaCasing verifies area names come back
// title-cased regardless of how the backend stored them.
func TestScheduleNormalizesAreaCasing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{
			{"date": "2026-08-31", "area": "WARD 7 NORTH", "routeName": "R1"},
			{"date": "2026-08-31", "area": "green park", "routeName": "R2"},
		})
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, func() string { return "T1" })
	entries, err := client.Schedule(context.Background(), "2026-08-31")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Area != "Ward 7 North" {
		t.Errorf("expected 'Ward 7 North', got %q", entries[0].Area)
	}
	if entries[1].Area != "Green Park" {
		t.Errorf("expected 'Green Park', got %q", entries[1].Area)
	}
}
