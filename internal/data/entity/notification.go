package entity

import (
	"time"
)

type NotificationType string

const (
	NotificationPaymentSuccess   NotificationType = "payment_success"
	NotificationPaymentFailed    NotificationType = "payment_failed"
	NotificationPayment          NotificationType = "payment"
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationSystem           NotificationType = "system"
)

const PriorityHigh = "high"

// Notification is an in-app message. Only IsRead changes after creation.
type Notification struct {
	ID        string           `db:"id" firestore:"-" json:"id"`
	UserID    string           `db:"user_id" firestore:"userId" json:"userId"`
	Type      NotificationType `db:"type" firestore:"type" json:"type"`
	Title     string           `db:"title" firestore:"title" json:"title"`
	Message   string           `db:"message" firestore:"message" json:"message"`
	IsRead    bool             `db:"is_read" firestore:"isRead" json:"isRead"`
	Priority  string           `db:"priority" firestore:"priority" json:"priority"`
	CreatedAt time.Time        `db:"created_at" firestore:"createdAt" json:"createdAt"`
	Metadata  map[string]any   `db:"metadata" firestore:"metadata,omitempty" json:"metadata,omitempty"`
}
