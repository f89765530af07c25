package api

import (
	"context"
	"fmt"
)

// AdminDashboardStats returns the admin dashboard counters.
func (c *Client) AdminDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.getJSON(ctx, "/api/admin/dashboard/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DashboardStats returns the role-scoped dashboard counters for the current
// user.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.getJSON(ctx, "/api/dashboard/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Users lists all accounts.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.getJSON(ctx, "/api/admin/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser provisions an account.
func (c *Client) CreateUser(ctx context.Context, payload RegisterPayload) (*User, error) {
	var created User
	if err := c.postJSON(ctx, "/api/admin/users", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUser updates an account.
func (c *Client) UpdateUser(ctx context.Context, id int64, payload RegisterPayload) error {
	return c.putJSON(ctx, fmt.Sprintf("/api/admin/users/%d", id), payload, nil)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.deleteJSON(ctx, fmt.Sprintf("/api/admin/users/%d", id))
}

// Routes lists all collection routes.
func (c *Client) Routes(ctx context.Context) ([]Route, error) {
	var routes []Route
	if err := c.getJSON(ctx, "/api/admin/routes", &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// CreateRoute defines a new collection route.
func (c *Client) CreateRoute(ctx context.Context, route Route) (*Route, error) {
	var created Route
	if err := c.postJSON(ctx, "/api/admin/routes", route, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteRoute removes a route.
func (c *Client) DeleteRoute(ctx context.Context, id int64) error {
	return c.deleteJSON(ctx, fmt.Sprintf("/api/admin/routes/%d", id))
}

// Vehicles lists the fleet.
func (c *Client) Vehicles(ctx context.Context) ([]Vehicle, error) {
	var vehicles []Vehicle
	if err := c.getJSON(ctx, "/api/admin/vehicles", &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// CreateVehicle registers a vehicle.
func (c *Client) CreateVehicle(ctx context.Context, vehicle Vehicle) (*Vehicle, error) {
	var created Vehicle
	if err := c.postJSON(ctx, "/api/admin/vehicles", vehicle, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteVehicle removes a vehicle.
func (c *Client) DeleteVehicle(ctx context.Context, id int64) error {
	return c.deleteJSON(ctx, fmt.Sprintf("/api/admin/vehicles/%d", id))
}

// Reports returns the admin report roll-ups.
func (c *Client) Reports(ctx context.Context) ([]Report, error) {
	var reports []Report
	if err := c.getJSON(ctx, "/api/admin/reports", &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
