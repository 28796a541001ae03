package model

// DashboardStats aggregates the headline numbers for the admin start
// page, assembled from the per-entity stats queries.
type DashboardStats struct {
	Customers    CustomerStats         `json:"customers"`
	Requests     RequestStats          `json:"requests"`
	Appointments AppointmentStats      `json:"appointments"`
	Upcoming     []AppointmentResponse `json:"upcomingAppointments"`
}
