package entity

// Status is the reservation axis shared by bookings and coach appointments.
type Status string

const (
	StatusPending              Status = "pending"
	StatusConfirmed            Status = "confirmed"
	StatusCancelled            Status = "cancelled"
	StatusRefundRequested      Status = "refund_requested"
	StatusRefunded             Status = "refunded"
	StatusAwaitingVerification Status = "awaiting_verification"
	StatusVerified             Status = "verified"
	StatusCompleted            Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusRefundRequested, StatusRefunded,
		StatusAwaitingVerification, StatusVerified, StatusCompleted:
		return true
	}
	return false
}

// PaymentStatus is the money axis. "completed" and "paid" are synonyms for a held payment.
type PaymentStatus string

const (
	PaymentNone            PaymentStatus = ""
	PaymentUnpaid          PaymentStatus = "unpaid"
	PaymentCompleted       PaymentStatus = "completed"
	PaymentPaid            PaymentStatus = "paid"
	PaymentHeldByAdmin     PaymentStatus = "held_by_admin"
	PaymentReleasedToVenue PaymentStatus = "released_to_venue"
	PaymentRefunded        PaymentStatus = "refunded"
	PaymentFailed          PaymentStatus = "failed"
)

// HeldPaymentStatuses are the statuses in which funds sit in escrow.
var HeldPaymentStatuses = []PaymentStatus{PaymentCompleted, PaymentPaid, PaymentHeldByAdmin}

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentNone, PaymentUnpaid, PaymentCompleted, PaymentPaid, PaymentHeldByAdmin,
		PaymentReleasedToVenue, PaymentRefunded, PaymentFailed:
		return true
	}
	return false
}

func (p PaymentStatus) IsHeld() bool {
	return p == PaymentCompleted || p == PaymentPaid || p == PaymentHeldByAdmin
}

type VerificationStatus string

const (
	VerificationNone     VerificationStatus = "none"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Valid accepts the empty value for documents written before verification existed.
func (v VerificationStatus) Valid() bool {
	switch v {
	case "", VerificationNone, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

// RecordKind tells which collection a payment reference points at.
type RecordKind string

const (
	KindCourt RecordKind = "court"
	KindCoach RecordKind = "coach"
)

const (
	CollectionBookings          = "bookings"
	CollectionCoachAppointments = "coach_appointments"
	CollectionNotifications     = "notifications"
	CollectionAdmin             = "admin"
)

// KindFromReference maps the gateway's echoed booking type. Empty and "court" select court
// bookings; every other value selects coach appointments.
func KindFromReference(ref string) RecordKind {
	if ref == "" || ref == string(KindCourt) {
		return KindCourt
	}
	return KindCoach
}

func (k RecordKind) Collection() string {
	if k == KindCourt {
		return CollectionBookings
	}
	return CollectionCoachAppointments
}
