package entity

import (
	"fmt"
	"time"
)

// CoachAppointment is a booked coaching session. Proof fields are written by the coach app;
// verification and payout fields are owned by the back-office.
type CoachAppointment struct {
	ID            string  `db:"id" firestore:"-" json:"id"`
	CoachID       string  `db:"coach_id" firestore:"coachId" json:"coachId"`
	CoachName     string  `db:"coach_name" firestore:"coachName" json:"coachName"`
	UserID        string  `db:"user_id" firestore:"userId" json:"userId"`
	UserEmail     string  `db:"user_email" firestore:"userEmail" json:"userEmail,omitempty"`
	StudentName   string  `db:"student_name" firestore:"studentName" json:"studentName"`
	Date          string  `db:"date" firestore:"date" json:"date"`
	TimeSlot      string  `db:"time_slot" firestore:"timeSlot" json:"timeSlot"`
	EndTime       string  `db:"end_time" firestore:"endTime" json:"endTime"`
	Duration      int     `db:"duration" firestore:"duration" json:"duration"`
	Price         float64 `db:"price" firestore:"price" json:"price"`
	PaymentAmount float64 `db:"payment_amount" firestore:"paymentAmount" json:"paymentAmount"`

	Status        Status        `db:"status" firestore:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" firestore:"paymentStatus" json:"paymentStatus"`

	PaymentID          string              `db:"payment_id" firestore:"paymentId" json:"paymentId,omitempty"`
	BillplzBillID      string              `db:"billplz_bill_id" firestore:"billplzBillId" json:"billplzBillId,omitempty"`
	PaidAmount         *float64            `db:"paid_amount" firestore:"paidAmount" json:"paidAmount,omitempty"`
	PaidAt             *time.Time          `db:"paid_at" firestore:"paidAt" json:"paidAt,omitempty"`
	FailedAt           *time.Time          `db:"failed_at" firestore:"failedAt" json:"failedAt,omitempty"`
	TransactionDetails *TransactionDetails `db:"transaction_details" firestore:"transactionDetails" json:"transactionDetails,omitempty"`
	LastCallbackKey    string              `db:"last_callback_key" firestore:"lastCallbackKey" json:"-"`

	ProofPhotoBase64   *string            `db:"proof_photo_base64" firestore:"proofPhotoBase64" json:"proofPhotoBase64,omitempty"`
	ProofNotes         *string            `db:"proof_notes" firestore:"proofNotes" json:"proofNotes,omitempty"`
	ProofUploadedAt    *time.Time         `db:"proof_uploaded_at" firestore:"proofUploadedAt" json:"proofUploadedAt,omitempty"`
	VerificationStatus VerificationStatus `db:"verification_status" firestore:"verificationStatus" json:"verificationStatus,omitempty"`
	VerifiedAt         *time.Time         `db:"verified_at" firestore:"verifiedAt" json:"verifiedAt,omitempty"`
	VerifiedBy         string             `db:"verified_by" firestore:"verifiedBy" json:"verifiedBy,omitempty"`
	VerificationNotes  string             `db:"verification_notes" firestore:"verificationNotes" json:"verificationNotes,omitempty"`

	PaymentReleasedToCoach bool       `db:"payment_released_to_coach" firestore:"paymentReleasedToCoach" json:"paymentReleasedToCoach"`
	PaymentReleasedAt      *time.Time `db:"payment_released_at" firestore:"paymentReleasedAt" json:"paymentReleasedAt,omitempty"`
	CoachEarnings          *float64   `db:"coach_earnings" firestore:"coachEarnings" json:"coachEarnings,omitempty"`
	PlatformFee            *float64   `db:"platform_fee" firestore:"platformFee" json:"platformFee,omitempty"`

	Timestamps
}

// ChargedAmount is what the student paid: paymentAmount, falling back to price.
func (a *CoachAppointment) ChargedAmount() float64 {
	if a.PaymentAmount > 0 {
		return a.PaymentAmount
	}
	return a.Price
}

func (a *CoachAppointment) HasProof() bool {
	return a.ProofPhotoBase64 != nil && *a.ProofPhotoBase64 != ""
}

func (a *CoachAppointment) State() RecordState {
	return RecordState{
		Status:          a.Status,
		PaymentStatus:   a.PaymentStatus,
		LastCallbackKey: a.LastCallbackKey,
		PayoutReleased:  a.PaymentReleasedToCoach,
	}
}

// Validate checks every status axis of the appointment.
func (a *CoachAppointment) Validate() error {
	if err := a.State().Validate(); err != nil {
		return err
	}
	if !a.VerificationStatus.Valid() {
		return fmt.Errorf("%w: verification status %q", ErrUnknownStatus, a.VerificationStatus)
	}
	return nil
}

func (a *CoachAppointment) PaymentRecord() *PaymentRecord {
	return &PaymentRecord{
		ID:              a.ID,
		Kind:            KindCoach,
		UserID:          a.UserID,
		UserEmail:       a.UserEmail,
		CoachID:         a.CoachID,
		CoachName:       a.CoachName,
		StudentName:     a.StudentName,
		Date:            a.Date,
		Status:          a.Status,
		PaymentStatus:   a.PaymentStatus,
		PaymentID:       a.PaymentID,
		LastCallbackKey: a.LastCallbackKey,
	}
}
