// internal/models/offer.go
package models

import "time"

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferDeclined OfferStatus = "declined"
)

// AssignmentOffer binds one employee to one job.
type AssignmentOffer struct {
	EmployeeID   string      `json:"id"`
	EmployeeName string      `json:"name"`
	AssignedAt   time.Time   `json:"assignedAt"`
	Status       OfferStatus `json:"status"`
}

// AllocationEvent is the audit record emitted after an allocation commits.
type AllocationEvent struct {
	EventID           string            `json:"eventId"`
	JobID             string            `json:"jobId"`
	AssignedEmployees []AssignmentOffer `json:"assignedEmployees"`
	AllocatedBy       string            `json:"allocatedBy"`
	AllocatedAt       time.Time         `json:"allocatedAt"`
	Method            string            `json:"method"`
}

const (
	AllocationMethodAuto   = "auto"
	AllocationMethodManual = "manual"
)
