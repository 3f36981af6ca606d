package entity

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownStatus marks a stored record whose status is outside the known values.
var ErrUnknownStatus = errors.New("unknown status")

// PaymentRecord is the payment-relevant projection shared by bookings and coach appointments.
type PaymentRecord struct {
	ID              string
	Kind            RecordKind
	UserID          string
	UserEmail       string
	CoachID         string
	CoachName       string
	StudentName     string
	VenueName       string
	Date            string
	Status          Status
	PaymentStatus   PaymentStatus
	PaymentID       string
	LastCallbackKey string
}

// RecordState is the part of a record a Condition is evaluated against.
type RecordState struct {
	Status          Status
	PaymentStatus   PaymentStatus
	LastCallbackKey string
	PayoutReleased  bool
}

// Validate rejects a state holding a status or payment status outside the closed sets.
func (s RecordState) Validate() error {
	if !s.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrUnknownStatus, s.Status)
	}
	if !s.PaymentStatus.Valid() {
		return fmt.Errorf("%w: payment status %q", ErrUnknownStatus, s.PaymentStatus)
	}
	return nil
}

// Condition guards a conditional update. Empty slices match anything.
type Condition struct {
	StatusIn        []Status
	PaymentStatusIn []PaymentStatus
	CallbackKeyNot  string
	PayoutPending   bool
}

func (c Condition) Matches(s RecordState) bool {
	if len(c.StatusIn) > 0 && !slices.Contains(c.StatusIn, s.Status) {
		return false
	}
	if len(c.PaymentStatusIn) > 0 && !slices.Contains(c.PaymentStatusIn, s.PaymentStatus) {
		return false
	}
	if c.CallbackKeyNot != "" && s.LastCallbackKey == c.CallbackKeyNot {
		return false
	}
	if c.PayoutPending && s.PayoutReleased {
		return false
	}
	return true
}

// Field names a record attribute in both stores.
type Field struct {
	Path   string
	Column string
}

// FieldUpdate is one field assignment in a partial update. A nil Value clears the field.
type FieldUpdate struct {
	Field
	Value any
}

func (f Field) Set(value any) FieldUpdate {
	return FieldUpdate{Field: f, Value: value}
}

var (
	FieldStatus                = Field{"status", "status"}
	FieldPaymentStatus         = Field{"paymentStatus", "payment_status"}
	FieldPaymentID             = Field{"paymentId", "payment_id"}
	FieldBillplzBillID         = Field{"billplzBillId", "billplz_bill_id"}
	FieldPaidAmount            = Field{"paidAmount", "paid_amount"}
	FieldPaidAt                = Field{"paidAt", "paid_at"}
	FieldFailedAt              = Field{"failedAt", "failed_at"}
	FieldTransactionDetails    = Field{"transactionDetails", "transaction_details"}
	FieldLastCallbackKey       = Field{"lastCallbackKey", "last_callback_key"}
	FieldUpdatedAt             = Field{"updatedAt", "updated_at"}
	FieldReleasedAt            = Field{"releasedAt", "released_at"}
	FieldReleasedBy            = Field{"releasedBy", "released_by"}
	FieldRefundedAt            = Field{"refundedAt", "refunded_at"}
	FieldRefundedBy            = Field{"refundedBy", "refunded_by"}
	FieldRefundRequestRejected = Field{"refundRequestRejected", "refund_request_rejected"}
	FieldRefundRejectedAt      = Field{"refundRejectedAt", "refund_rejected_at"}
	FieldRefundRejectedBy      = Field{"refundRejectedBy", "refund_rejected_by"}
	FieldVerificationStatus    = Field{"verificationStatus", "verification_status"}
	FieldVerifiedAt            = Field{"verifiedAt", "verified_at"}
	FieldVerifiedBy            = Field{"verifiedBy", "verified_by"}
	FieldVerificationNotes     = Field{"verificationNotes", "verification_notes"}
	FieldProofPhotoBase64      = Field{"proofPhotoBase64", "proof_photo_base64"}
	FieldProofNotes            = Field{"proofNotes", "proof_notes"}
	FieldProofUploadedAt       = Field{"proofUploadedAt", "proof_uploaded_at"}
	FieldPaymentReleased       = Field{"paymentReleasedToCoach", "payment_released_to_coach"}
	FieldPaymentReleasedAt     = Field{"paymentReleasedAt", "payment_released_at"}
	FieldCoachEarnings         = Field{"coachEarnings", "coach_earnings"}
	FieldPlatformFee           = Field{"platformFee", "platform_fee"}
)
