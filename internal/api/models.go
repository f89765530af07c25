package api

import "time"

// Role is the backend's user role.
type Role string

const (
	RoleCitizen    Role = "CITIZEN"
	RoleEmployee   Role = "EMPLOYEE"
	RoleSupervisor Role = "SUPERVISOR"
	RoleAdmin      Role = "ADMIN"
)

// User is the authenticated identity record.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Waypoint is one stop on a collection route.
type Waypoint struct {
	ID        int64   `json:"id"`
	RouteID   int64   `json:"routeId"`
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Sequence  int     `json:"sequence"`
}

// Route is a collection route assigned to an employee and vehicle.
type Route struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Area      string     `json:"area"`
	Date      string     `json:"date"`
	VehicleID int64      `json:"vehicleId"`
	Completed bool       `json:"completed"`
	Waypoints []Waypoint `json:"waypoints,omitempty"`
}

// Vehicle is a collection vehicle.
type Vehicle struct {
	ID           int64  `json:"id"`
	Registration string `json:"registration"`
	Capacity     int    `json:"capacity"`
	Status       string `json:"status"`
}

// Complaint is a citizen-filed waste complaint.
type Complaint struct {
	ID          int64     `json:"id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Area        string    `json:"area"`
	Status      string    `json:"status"`
	AssignedTo  int64     `json:"assignedTo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Attendance is one day's attendance record for an employee.
type Attendance struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

// CollectionRecord is a completed (or backend-accepted) waypoint collection.
type CollectionRecord struct {
	ID         int64     `json:"id"`
	WaypointID int64     `json:"waypointId"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
	PhotoURL   string    `json:"photoUrl,omitempty"`
}

// ScheduleEntry is one row of the citizen pickup schedule.
type ScheduleEntry struct {
	Date      string `json:"date"`
	Area      string `json:"area"`
	RouteName string `json:"routeName"`
}

// DashboardStats is the aggregate counters behind the dashboards.
type DashboardStats struct {
	TotalRoutes      int `json:"totalRoutes"`
	RoutesCompleted  int `json:"routesCompleted"`
	OpenComplaints   int `json:"openComplaints"`
	ActiveVehicles   int `json:"activeVehicles"`
	CollectionsToday int `json:"collectionsToday"`
}

// Report is a supervisor/admin roll-up row.
type Report struct {
	Period          string  `json:"period"`
	CollectionsDone int     `json:"collectionsDone"`
	ComplaintsOpen  int     `json:"complaintsOpen"`
	OnTimeRate      float64 `json:"onTimeRate"`
}
