package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"time"
)

// CollectionsEndpoint accepts the multipart waypoint-collection submission.
// The offline queue replays against it, so it is fixed here rather than
// buried in a method.
const CollectionsEndpoint = "/api/employee/collections"

// TodayRoutes returns the routes assigned to the current employee for today.
func (c *Client) TodayRoutes(ctx context.Context) ([]Route, error) {
	var routes []Route
	if err := c.getJSON(ctx, "/api/employee/routes/today", &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// RouteWaypoints returns the ordered waypoints for a route.
func (c *Client) RouteWaypoints(ctx context.Context, routeID int64) ([]Waypoint, error) {
	var wps []Waypoint
	path := fmt.Sprintf("/api/employee/route/%d/waypoints", routeID)
	if err := c.getJSON(ctx, path, &wps); err != nil {
		return nil, err
	}
	return wps, nil
}

// RouteCompletion marks a whole route done.
type RouteCompletion struct {
	RouteID  int64  `json:"routeId"`
	Remark   string `json:"remark,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// CompleteRoute marks the route complete.
func (c *Client) CompleteRoute(ctx context.Context, completion RouteCompletion) error {
	return c.postJSON(ctx, "/api/employee/route/complete", completion, nil)
}

// MarkAttendance records today's attendance. Status and remarks travel as
// query parameters; that is the backend's contract, odd as it looks.
func (c *Client) MarkAttendance(ctx context.Context, status, remarks string) error {
	q := url.Values{}
	q.Set("status", status)
	if remarks != "" {
		q.Set("remarks", remarks)
	}
	return c.postJSON(ctx, "/api/employee/attendance/mark?"+q.Encode(), nil, nil)
}

// TodayAttendance returns today's attendance record, if marked.
func (c *Client) TodayAttendance(ctx context.Context) (*Attendance, error) {
	var a Attendance
	if err := c.getJSON(ctx, "/api/employee/attendance/today", &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// TodayCollections returns the collections already recorded today.
func (c *Client) TodayCollections(ctx context.Context) ([]CollectionRecord, error) {
	var recs []CollectionRecord
	if err := c.getJSON(ctx, "/api/employee/collections/today", &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// LocationUpdate is a live GPS ping from a collection vehicle.
type LocationUpdate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// UpdateLocation reports the employee's current position.
func (c *Client) UpdateLocation(ctx context.Context, loc LocationUpdate) error {
	return c.postJSON(ctx, "/api/employee/location", loc, nil)
}

// BuildCollectionForm serializes a waypoint collection (photo, waypoint id,
// capture time) as multipart form data. The bytes are returned rather than
// streamed so the offline queue can persist the exact payload and replay it
// byte-for-byte later.
func BuildCollectionForm(photo []byte, filename string, waypointID int64, takenAt time.Time) (contentType string, body []byte, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("photo", filename)
	if err != nil {
		return "", nil, fmt.Errorf("create photo part: %w", err)
	}
	if _, err := fw.Write(photo); err != nil {
		return "", nil, fmt.Errorf("write photo part: %w", err)
	}
	if err := w.WriteField("waypointId", strconv.FormatInt(waypointID, 10)); err != nil {
		return "", nil, fmt.Errorf("write waypointId: %w", err)
	}
	if err := w.WriteField("timestamp", takenAt.UTC().Format(time.RFC3339)); err != nil {
		return "", nil, fmt.Errorf("write timestamp: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("finalize form: %w", err)
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}

// SubmitCollection delivers a prepared collection form immediately. Offline
// handling lives in the offline package; this is the direct path.
func (c *Client) SubmitCollection(ctx context.Context, contentType string, body []byte) error {
	return c.PostRaw(ctx, CollectionsEndpoint, contentType, body, nil)
}
