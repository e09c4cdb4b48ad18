// Package models defines the persisted entities of the marketplace.
// Every entity lives in one JSON document collection (see internal/docstore);
// json tags mirror the wire shape the API exposes.
package models

import "time"

// User roles.
const (
	RoleClient = "client"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// Vendor profile statuses. Transitions happen only through admin action.
const (
	ProfilePending  = "pending"
	ProfileApproved = "approved"
	ProfileRejected = "rejected"
)

// Booking statuses.
//
// requested -> accepted | declined ; accepted -> completed ;
// any non-terminal -> cancelled. "confirmed" is a client-side
// acknowledgment written over the same field; vendors may still
// accept/decline/complete afterwards.
const (
	BookingRequested = "requested"
	BookingAccepted  = "accepted"
	BookingDeclined  = "declined"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
	BookingConfirmed = "confirmed"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Sanitize returns a copy safe to send to clients.
func (u User) Sanitize() User {
	u.PasswordHash = ""
	return u
}

// VendorProfile is a vendor's marketplace application. One per owner.
type VendorProfile struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	StoreName   string    `json:"storeName"`
	Region      string    `json:"region"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Service belongs to exactly one vendor profile and is publicly visible
// only while that profile is approved.
type Service struct {
	ID              string    `json:"id"`
	VendorProfileID string    `json:"vendorProfileId"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Price           float64   `json:"price"`
	Description     string    `json:"description"`
	TimeSlots       SlotList  `json:"timeSlots"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// LegacyVendor is a flat pre-marketplace vendor record. Once migrated to a
// profile/service pair it is excluded from public listings.
type LegacyVendor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Region      string   `json:"region"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	TimeSlots   SlotList `json:"timeSlots"`
	Migrated    bool     `json:"migrated"`
}

// Booking references a listing by id: either a LegacyVendor or a Service.
// VendorOwnerID/VendorProfileID are filled only for service bookings.
type Booking struct {
	ID              string     `json:"id"`
	ClientID        string     `json:"clientId"`
	VendorID        string     `json:"vendorId"`
	Date            string     `json:"date"`
	TimeSlot        string     `json:"timeSlot,omitempty"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	VendorOwnerID   string     `json:"vendorOwnerId,omitempty"`
	VendorProfileID string     `json:"vendorProfileId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmedAt,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
	AcceptedAt      *time.Time `json:"acceptedAt,omitempty"`
	DeclinedAt      *time.Time `json:"declinedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// BudgetRecord is one immutable ledger entry, newest first in Budget.Records.
type BudgetRecord struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"` // ISO date only, e.g. 2025-06-01
	Category  string  `json:"category"`
	Amount    float64 `json:"amount"`
	BookingID string  `json:"bookingId,omitempty"`
	VendorID  string  `json:"vendorId,omitempty"`
}

// Budget is the per-client ledger, lazily created on first access.
type Budget struct {
	ClientID    string             `json:"clientId"`
	Total       float64            `json:"total"`
	Allocations map[string]float64 `json:"allocations"`
	Actuals     map[string]float64 `json:"actuals"`
	Records     []BudgetRecord     `json:"records"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Delivery records the email outcome attached to a notification.
type Delivery struct {
	EmailAttempted bool   `json:"emailAttempted"`
	EmailSent      bool   `json:"emailSent"`
	Provider       string `json:"provider,omitempty"`
}

type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role,omitempty"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Event     string     `json:"event"`
	RefID     string     `json:"refId,omitempty"`
	Delivery  Delivery   `json:"delivery"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Tradition is editorial content served read-only.
type Tradition struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Region      string   `json:"region"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}
