package api

import (
	"context"
	"fmt"
	"net/url"
)

// Complaints lists complaints visible to a supervisor, optionally filtered by
// status (OPEN, IN_PROGRESS, RESOLVED).
func (c *Client) Complaints(ctx context.Context, status string) ([]Complaint, error) {
	path := "/api/supervisor/complaints"
	if status != "" {
		q := url.Values{}
		q.Set("status", status)
		path += "?" + q.Encode()
	}

	var complaints []Complaint
	if err := c.getJSON(ctx, path, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

// UpdateComplaintStatus moves a complaint through its workflow.
func (c *Client) UpdateComplaintStatus(ctx context.Context, complaintID int64, status string) error {
	path := fmt.Sprintf("/api/supervisor/complaints/%d/status", complaintID)
	return c.putJSON(ctx, path, map[string]string{"status": status}, nil)
}

// AssignEmployee assigns a complaint to an employee.
func (c *Client) AssignEmployee(ctx context.Context, complaintID, employeeID int64) error {
	path := fmt.Sprintf("/api/supervisor/complaints/%d/assign", complaintID)
	return c.putJSON(ctx, path, map[string]int64{"employeeId": employeeID}, nil)
}
