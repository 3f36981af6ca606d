package response

import (
	"strconv"
	"time"

	"sportify-backoffice/internal/data/entity"
)

// PaymentStatusResponse is the body of a successful status check.
type PaymentStatusResponse struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentID     string `json:"paymentId"`
}

type EscrowBookingResponse struct {
	ID                    string     `json:"id"`
	Date                  string     `json:"date"`
	TimeSlot              string     `json:"timeSlot"`
	EndTime               string     `json:"endTime"`
	TotalPrice            float64    `json:"totalPrice"`
	VenueName             string     `json:"venueName"`
	VenueOwnerID          string     `json:"venueOwnerId"`
	UserID                string     `json:"userId"`
	UserName              string     `json:"userName"`
	CourtName             string     `json:"courtName"`
	Status                string     `json:"status"`
	PaymentStatus         string     `json:"paymentStatus"`
	PaymentID             string     `json:"paymentId,omitempty"`
	PaidAt                *time.Time `json:"paidAt,omitempty"`
	ReleasedAt            *time.Time `json:"releasedAt,omitempty"`
	RefundedAt            *time.Time `json:"refundedAt,omitempty"`
	RefundRequestRejected bool       `json:"refundRequestRejected"`
	CanRefund             bool       `json:"canRefund"`
	CreatedAt             time.Time  `json:"createdAt"`
}

func NewEscrowBookingResponse(b *entity.Booking, canRefund bool) EscrowBookingResponse {
	courtName := b.CourtName
	if courtName == "" && b.CourtNumber > 0 {
		courtName = "Court " + strconv.Itoa(b.CourtNumber)
	}
	return EscrowBookingResponse{
		ID:                    b.ID,
		Date:                  b.Date,
		TimeSlot:              b.TimeSlot,
		EndTime:               b.EndTime,
		TotalPrice:            b.TotalPrice,
		VenueName:             b.VenueName,
		VenueOwnerID:          b.VenueOwner,
		UserID:                b.UserID,
		UserName:              b.UserName,
		CourtName:             courtName,
		Status:                string(b.Status),
		PaymentStatus:         string(b.PaymentStatus),
		PaymentID:             b.PaymentID,
		PaidAt:                b.PaidAt,
		ReleasedAt:            b.ReleasedAt,
		RefundedAt:            b.RefundedAt,
		RefundRequestRejected: b.RefundRequestRejected,
		CanRefund:             canRefund,
		CreatedAt:             b.CreatedAt,
	}
}

type EscrowBucket struct {
	Amount float64 `json:"amount"`
	Count  int64   `json:"count"`
}

type EscrowStatsResponse struct {
	Held     EscrowBucket `json:"held"`
	Released EscrowBucket `json:"released"`
	Refunded EscrowBucket `json:"refunded"`
}

// ActionResponse reports an admin mutation. NotificationSent is false when the record was
// updated but the follow-up notification could not be written.
type ActionResponse struct {
	ID               string   `json:"id"`
	Status           string   `json:"status"`
	PaymentStatus    string   `json:"paymentStatus,omitempty"`
	CoachEarnings    *float64 `json:"coachEarnings,omitempty"`
	PlatformFee      *float64 `json:"platformFee,omitempty"`
	NotificationSent bool     `json:"notificationSent"`
	Message          string   `json:"message"`
}

// CallbackResponse is the body returned to the payment gateway.
type CallbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusErrorResponse is the failure body of the status check.
type StatusErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}
