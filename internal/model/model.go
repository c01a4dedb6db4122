package model

import "time"

// ConflictWindow is the minimum spacing between two appointments of one doctor.
const ConflictWindow = 30 * time.Minute

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type SyncStatus string

const (
	SyncPending    SyncStatus = "pending"
	SyncInProgress SyncStatus = "syncing"
	SyncSynced     SyncStatus = "synced"
	SyncFailed     SyncStatus = "failed"
	SyncSkipped    SyncStatus = "skipped"
)

type Appointment struct {
	ID              int64      `json:"id"`
	DoctorID        int64      `json:"doctorId"`
	BookedBy        int64      `json:"bookedBy"`
	Date            time.Time  `json:"date"`
	Notes           string     `json:"notes,omitempty"`
	ExternalEventID string     `json:"externalEventId,omitempty"`
	SyncStatus      SyncStatus `json:"syncStatus"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Synced reports whether the calendar holds a copy of the appointment.
func (a *Appointment) Synced() bool {
	return a.ExternalEventID != ""
}
