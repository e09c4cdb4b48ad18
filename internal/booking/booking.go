// Package booking implements the booking engine: creation with slot-conflict
// checks, client cancel/confirm, vendor accept/decline/complete, and the
// budget recording triggered by confirmation.
//
// A booking has a single status field written from both sides. "confirmed"
// is the client's acknowledgment; a vendor may still accept, decline or
// complete afterwards, overwriting it. This mirrors the historical behavior
// and is intentional, not a unified state machine.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eersi/marketplace/internal/apperr"
	"github.com/eersi/marketplace/internal/budget"
	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/listing"
	"github.com/eersi/marketplace/internal/models"
	"github.com/eersi/marketplace/internal/notify"
)

type Engine struct {
	store    *docstore.Store
	listings *listing.Service
	budgets  *budget.Service
	notifier *notify.Dispatcher
	now      func() time.Time
	newID    func() string
}

func NewEngine(store *docstore.Store, listings *listing.Service, budgets *budget.Service, notifier *notify.Dispatcher) *Engine {
	return &Engine{
		store:    store,
		listings: listings,
		budgets:  budgets,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// ListForClient returns the client's bookings.
func (e *Engine) ListForClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	all, err := docstore.LoadAll[models.Booking](ctx, e.store, docstore.CollBookings)
	if err != nil {
		return nil, err
	}
	mine := []models.Booking{}
	for _, b := range all {
		if b.ClientID == clientID {
			mine = append(mine, b)
		}
	}
	return mine, nil
}

// ListForVendor returns bookings owned by the vendor, matched by profile id
// or owner id so pre-migration bookings still show up.
func (e *Engine) ListForVendor(ctx context.Context, profileID, ownerID string) ([]models.Booking, error) {
	all, err := docstore.LoadAll[models.Booking](ctx, e.store, docstore.CollBookings)
	if err != nil {
		return nil, err
	}
	mine := []models.Booking{}
	for _, b := range all {
		if ownedByVendor(b, profileID, ownerID) {
			mine = append(mine, b)
		}
	}
	return mine, nil
}

func ownedByVendor(b models.Booking, profileID, ownerID string) bool {
	if b.VendorProfileID != "" && b.VendorProfileID == profileID {
		return true
	}
	return b.VendorOwnerID != "" && b.VendorOwnerID == ownerID
}

type CreateInput struct {
	VendorID string `json:"vendorId"`
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
	Type     string `json:"type"`
}

// Create books a slot. The listing must resolve, and no other live booking
// may hold the same (vendorId, date, timeSlot) triple. Slots are opaque
// labels compared by equality; a missing slot compares as the empty string.
func (e *Engine) Create(ctx context.Context, clientID string, in CreateInput) (models.Booking, error) {
	if in.VendorID == "" || in.Date == "" {
		return models.Booking{}, apperr.Validation("vendorId and date are required")
	}

	l, err := e.listings.Resolve(ctx, in.VendorID)
	if err != nil {
		return models.Booking{}, err
	}

	bookingType := in.Type
	if bookingType == "" {
		bookingType = l.Category
	}
	if bookingType == "" {
		bookingType = "appointment"
	}

	slot := models.NormalizeSlot(in.TimeSlot)
	b := models.Booking{
		ID:              e.newID(),
		ClientID:        clientID,
		VendorID:        in.VendorID,
		Date:            in.Date,
		TimeSlot:        slot,
		Type:            bookingType,
		Status:          models.BookingRequested,
		VendorOwnerID:   l.OwnerID,
		VendorProfileID: l.VendorProfileID,
		CreatedAt:       e.now(),
	}

	_, err = docstore.Update(ctx, e.store, docstore.CollBookings,
		func(items []models.Booking) ([]models.Booking, error) {
			for _, other := range items {
				if other.VendorID == in.VendorID &&
					other.Date == in.Date &&
					models.NormalizeSlot(other.TimeSlot) == slot &&
					other.Status != models.BookingCancelled &&
					other.Status != models.BookingDeclined {
					return nil, apperr.Conflict("This slot is already booked")
				}
			}
			return append(items, b), nil
		})
	if err != nil {
		return models.Booking{}, err
	}

	e.notifyClient(ctx, clientID, notify.Message{
		Title: "Booking requested",
		Body: fmt.Sprintf("Your booking request for %s on %s%s was sent to the vendor.",
			l.Name, b.Date, slotSuffix(b.TimeSlot)),
		Event: "booking_created",
		RefID: b.ID,
	})
	e.notifyVendorOwner(ctx, l.OwnerID, notify.Message{
		Title: "New booking request",
		Body: fmt.Sprintf("You received a booking request for %s on %s%s.",
			l.Name, b.Date, slotSuffix(b.TimeSlot)),
		Event: "booking_created",
		RefID: b.ID,
	})
	return b, nil
}

// Cancel sets the booking to cancelled. Only the owning client may cancel,
// and there is no way back through this path.
func (e *Engine) Cancel(ctx context.Context, bookingID, clientID string) (models.Booking, error) {
	var out models.Booking
	_, err := docstore.Update(ctx, e.store, docstore.CollBookings,
		func(items []models.Booking) ([]models.Booking, error) {
			i, err := findBooking(items, bookingID)
			if err != nil {
				return nil, err
			}
			if items[i].ClientID != clientID {
				return nil, apperr.Forbidden("Forbidden")
			}
			now := e.now()
			items[i].Status = models.BookingCancelled
			items[i].CancelledAt = &now
			out = items[i]
			return items, nil
		})
	if err != nil {
		return models.Booking{}, err
	}

	msg := fmt.Sprintf("Booking for %s on %s%s was cancelled by the client.",
		out.VendorID, out.Date, slotSuffix(out.TimeSlot))
	e.notifyVendorOwner(ctx, out.VendorOwnerID, notify.Message{
		Title: "Booking cancelled", Body: msg, Event: "booking_cancelled", RefID: out.ID,
	})
	e.notifyClient(ctx, clientID, notify.Message{
		Title: "Booking cancelled",
		Body: fmt.Sprintf("Your booking on %s%s was cancelled.",
			out.Date, slotSuffix(out.TimeSlot)),
		Event: "booking_cancelled", RefID: out.ID,
	})
	return out, nil
}

// ClientConfirm marks the booking confirmed and records the listing price
// against the client's budget. An unresolvable listing degrades the price
// to 0 instead of failing the confirmation.
func (e *Engine) ClientConfirm(ctx context.Context, bookingID, clientID string) (models.Booking, models.Budget, error) {
	var out models.Booking
	_, err := docstore.Update(ctx, e.store, docstore.CollBookings,
		func(items []models.Booking) ([]models.Booking, error) {
			i, err := findBooking(items, bookingID)
			if err != nil {
				return nil, err
			}
			if items[i].ClientID != clientID {
				return nil, apperr.Forbidden("Forbidden")
			}
			if items[i].Status == models.BookingCancelled {
				return nil, apperr.Validation("Booking cancelled")
			}
			now := e.now()
			items[i].Status = models.BookingConfirmed
			items[i].ConfirmedAt = &now
			out = items[i]
			return items, nil
		})
	if err != nil {
		return models.Booking{}, models.Budget{}, err
	}

	price := 0.0
	resolvedCategory := ""
	if l, err := e.listings.Resolve(ctx, out.VendorID); err == nil {
		price = l.Price
		resolvedCategory = l.Category
	}
	cat := out.Type
	if cat == "" {
		cat = resolvedCategory
	}
	if cat == "" {
		cat = "other"
	}

	bud, err := e.budgets.Record(ctx, clientID, budget.RecordInput{
		Category:  cat,
		Amount:    price,
		BookingID: out.ID,
		VendorID:  out.VendorID,
	})
	if err != nil {
		return models.Booking{}, models.Budget{}, err
	}

	e.notifyVendorOwner(ctx, out.VendorOwnerID, notify.Message{
		Title: "Booking confirmed",
		Body: fmt.Sprintf("The client confirmed the booking on %s%s.",
			out.Date, slotSuffix(out.TimeSlot)),
		Event: "booking_confirmed", RefID: out.ID,
	})
	e.notifyClient(ctx, clientID, notify.Message{
		Title: "Booking confirmed",
		Body: fmt.Sprintf("Your booking on %s%s is confirmed. %.2f was recorded against your %s budget.",
			out.Date, slotSuffix(out.TimeSlot), price, cat),
		Event: "booking_confirmed", RefID: out.ID,
	})
	return out, bud, nil
}

// VendorStatuses a vendor may set on a booking.
var VendorStatuses = []string{models.BookingAccepted, models.BookingDeclined, models.BookingCompleted}

// VendorSetStatus applies a vendor decision. Ownership is verified by
// profile id or owner id so bookings made before vendor migration still
// resolve.
func (e *Engine) VendorSetStatus(ctx context.Context, bookingID, profileID, ownerID, status string) (models.Booking, error) {
	valid := false
	for _, s := range VendorStatuses {
		if s == status {
			valid = true
			break
		}
	}
	if !valid {
		return models.Booking{}, apperr.Validation("Invalid status")
	}

	var out models.Booking
	_, err := docstore.Update(ctx, e.store, docstore.CollBookings,
		func(items []models.Booking) ([]models.Booking, error) {
			i, err := findBooking(items, bookingID)
			if err != nil {
				return nil, err
			}
			if !ownedByVendor(items[i], profileID, ownerID) {
				return nil, apperr.Forbidden("Forbidden")
			}
			now := e.now()
			items[i].Status = status
			items[i].UpdatedAt = &now
			switch status {
			case models.BookingAccepted:
				items[i].AcceptedAt = &now
			case models.BookingDeclined:
				items[i].DeclinedAt = &now
			case models.BookingCompleted:
				items[i].CompletedAt = &now
			}
			out = items[i]
			return items, nil
		})
	if err != nil {
		return models.Booking{}, err
	}

	titles := map[string]string{
		models.BookingAccepted:  "Booking accepted",
		models.BookingDeclined:  "Booking declined",
		models.BookingCompleted: "Booking completed",
	}
	e.notifyClient(ctx, out.ClientID, notify.Message{
		Title: titles[status],
		Body: fmt.Sprintf("The vendor marked your booking on %s%s as %s.",
			out.Date, slotSuffix(out.TimeSlot), status),
		Event: "booking_" + status, RefID: out.ID,
	})
	return out, nil
}

func findBooking(items []models.Booking, id string) (int, error) {
	for i := range items {
		if items[i].ID == id {
			return i, nil
		}
	}
	return 0, apperr.NotFound("Booking not found")
}

func slotSuffix(slot string) string {
	if slot == "" {
		return ""
	}
	return " at " + slot
}

// notifyClient looks up the client's email and dispatches; lookup failures
// only lose the email leg, never the operation.
func (e *Engine) notifyClient(ctx context.Context, clientID string, msg notify.Message) {
	msg.ToUserID = clientID
	msg.ToRole = models.RoleClient
	if u, ok := e.userByID(ctx, clientID); ok {
		msg.ToEmail = u.Email
	}
	e.notifier.Notify(ctx, msg)
}

// notifyVendorOwner dispatches to the vendor's owner when the booking has
// one (legacy listings have no owner to notify).
func (e *Engine) notifyVendorOwner(ctx context.Context, ownerID string, msg notify.Message) {
	if ownerID == "" {
		return
	}
	msg.ToUserID = ownerID
	msg.ToRole = models.RoleVendor
	if u, ok := e.userByID(ctx, ownerID); ok {
		msg.ToEmail = u.Email
	}
	e.notifier.Notify(ctx, msg)
}

func (e *Engine) userByID(ctx context.Context, id string) (models.User, bool) {
	users, err := docstore.LoadAll[models.User](ctx, e.store, docstore.CollUsers)
	if err != nil {
		return models.User{}, false
	}
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}
