package api

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ComplaintRequest is the citizen complaint intake payload.
type ComplaintRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Area        string `json:"area"`
}

// CreateComplaint files a new complaint and returns the created record.
func (c *Client) CreateComplaint(ctx context.Context, req ComplaintRequest) (*Complaint, error) {
	var created Complaint
	if err := c.postJSON(ctx, "/api/citizen/complaint", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// MyComplaints lists the current citizen's complaints.
func (c *Client) MyComplaints(ctx context.Context) ([]Complaint, error) {
	var complaints []Complaint
	if err := c.getJSON(ctx, "/api/citizen/complaints", &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

// Schedule returns the pickup schedule for a date (YYYY-MM-DD). Area names
// come back from the backend in whatever casing the admin typed; normalize
// them for display.
func (c *Client) Schedule(ctx context.Context, date string) ([]ScheduleEntry, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	path := "/api/citizen/schedule"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var entries []ScheduleEntry
	if err := c.getJSON(ctx, path, &entries); err != nil {
		return nil, err
	}

	caser := cases.Title(language.English)
	for i := range entries {
		entries[i].Area = caser.String(strings.ToLower(entries[i].Area))
	}
	return entries, nil
}
