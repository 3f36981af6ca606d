package entity

import (
	"time"
)

type TransactionDetails struct {
	TransactionID     string     `firestore:"transactionId,omitempty" json:"transactionId,omitempty"`
	TransactionStatus string     `firestore:"transactionStatus,omitempty" json:"transactionStatus,omitempty"`
	BillID            string     `firestore:"billId,omitempty" json:"billId,omitempty"`
	State             string     `firestore:"state,omitempty" json:"state,omitempty"`
	PaidAt            string     `firestore:"paidAt,omitempty" json:"paidAt,omitempty"`
	FailedAt          *time.Time `firestore:"failedAt,omitempty" json:"failedAt,omitempty"`
}

// Booking is a court reservation.
type Booking struct {
	ID          string  `db:"id" firestore:"-" json:"id"`
	BookingType string  `db:"booking_type" firestore:"bookingType" json:"bookingType"`
	Date        string  `db:"date" firestore:"date" json:"date"`
	TimeSlot    string  `db:"time_slot" firestore:"timeSlot" json:"timeSlot"`
	EndTime     string  `db:"end_time" firestore:"endTime" json:"endTime"`
	TotalPrice  float64 `db:"total_price" firestore:"totalPrice" json:"totalPrice"`
	VenueName   string  `db:"venue_name" firestore:"venueName" json:"venueName"`
	VenueOwner  string  `db:"venue_owner_id" firestore:"venueOwnerId" json:"venueOwnerId"`
	UserID      string  `db:"user_id" firestore:"userId" json:"userId"`
	UserName    string  `db:"user_name" firestore:"userName" json:"userName"`
	UserEmail   string  `db:"user_email" firestore:"userEmail" json:"userEmail"`
	CourtName   string  `db:"court_name" firestore:"courtName" json:"courtName"`
	CourtNumber int     `db:"court_number" firestore:"courtNumber" json:"courtNumber"`

	Status        Status        `db:"status" firestore:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" firestore:"paymentStatus" json:"paymentStatus"`

	PaymentID          string              `db:"payment_id" firestore:"paymentId" json:"paymentId,omitempty"`
	BillplzBillID      string              `db:"billplz_bill_id" firestore:"billplzBillId" json:"billplzBillId,omitempty"`
	PaidAmount         *float64            `db:"paid_amount" firestore:"paidAmount" json:"paidAmount,omitempty"`
	PaidAt             *time.Time          `db:"paid_at" firestore:"paidAt" json:"paidAt,omitempty"`
	FailedAt           *time.Time          `db:"failed_at" firestore:"failedAt" json:"failedAt,omitempty"`
	TransactionDetails *TransactionDetails `db:"transaction_details" firestore:"transactionDetails" json:"transactionDetails,omitempty"`
	LastCallbackKey    string              `db:"last_callback_key" firestore:"lastCallbackKey" json:"-"`

	ReleasedAt            *time.Time `db:"released_at" firestore:"releasedAt" json:"releasedAt,omitempty"`
	ReleasedBy            string     `db:"released_by" firestore:"releasedBy" json:"releasedBy,omitempty"`
	RefundedAt            *time.Time `db:"refunded_at" firestore:"refundedAt" json:"refundedAt,omitempty"`
	RefundedBy            string     `db:"refunded_by" firestore:"refundedBy" json:"refundedBy,omitempty"`
	RefundRequestRejected bool       `db:"refund_request_rejected" firestore:"refundRequestRejected" json:"refundRequestRejected,omitempty"`
	RefundRejectedAt      *time.Time `db:"refund_rejected_at" firestore:"refundRejectedAt" json:"refundRejectedAt,omitempty"`
	RefundRejectedBy      string     `db:"refund_rejected_by" firestore:"refundRejectedBy" json:"refundRejectedBy,omitempty"`

	Timestamps
}

func (b *Booking) State() RecordState {
	return RecordState{
		Status:          b.Status,
		PaymentStatus:   b.PaymentStatus,
		LastCallbackKey: b.LastCallbackKey,
	}
}

func (b *Booking) Validate() error {
	return b.State().Validate()
}

func (b *Booking) PaymentRecord() *PaymentRecord {
	return &PaymentRecord{
		ID:              b.ID,
		Kind:            KindCourt,
		UserID:          b.UserID,
		UserEmail:       b.UserEmail,
		VenueName:       b.VenueName,
		Date:            b.Date,
		Status:          b.Status,
		PaymentStatus:   b.PaymentStatus,
		PaymentID:       b.PaymentID,
		LastCallbackKey: b.LastCallbackKey,
	}
}
