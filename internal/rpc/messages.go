package rpc

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Appointment struct {
	ID              int64     `json:"id"`
	DoctorID        int64     `json:"doctorId"`
	BookedBy        int64     `json:"bookedBy"`
	Date            time.Time `json:"date"`
	Notes           string    `json:"notes,omitempty"`
	ExternalEventID string    `json:"externalEventId,omitempty"`
	SyncStatus      string    `json:"syncStatus"`
	CreatedAt       time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	User *User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type WhoAmIRequest struct{}

// WhoAmIResponse carries a nil User for anonymous callers.
type WhoAmIResponse struct {
	User *User `json:"user"`
}

type BookAppointmentRequest struct {
	DoctorID int64  `json:"doctorId"`
	Date     string `json:"date"`
	Notes    string `json:"notes,omitempty"`
}

type BookAppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}

type ListDoctorAppointmentsRequest struct {
	DoctorID int64 `json:"doctorId"`
}

type ListDoctorAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}

type SyncAppointmentRequest struct {
	AppointmentID int64 `json:"appointmentId"`
}

type SyncAppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}
