package usecase

import (
	"slices"
	"strings"
	"time"

	"sportify-backoffice/internal/data/entity"

	"github.com/shopspring/decimal"
)

// RefundCutoff is the minimum time between a refund and the booking start.
const RefundCutoff = 24 * time.Hour

var platformFeeRate = decimal.RequireFromString("0.10")

// paymentTransitions lists the allowed next payment statuses per current status.
var paymentTransitions = map[entity.PaymentStatus][]entity.PaymentStatus{
	entity.PaymentNone:        {entity.PaymentCompleted, entity.PaymentFailed},
	entity.PaymentUnpaid:      {entity.PaymentCompleted, entity.PaymentFailed},
	entity.PaymentFailed:      {entity.PaymentCompleted},
	entity.PaymentCompleted:   {entity.PaymentReleasedToVenue, entity.PaymentRefunded},
	entity.PaymentPaid:        {entity.PaymentReleasedToVenue, entity.PaymentRefunded},
	entity.PaymentHeldByAdmin: {entity.PaymentReleasedToVenue, entity.PaymentRefunded},
}

// CanTransitionPayment reports whether a payment may move from one status to another.
// Released and refunded payments have no outgoing transitions.
func CanTransitionPayment(from, to entity.PaymentStatus) bool {
	return slices.Contains(paymentTransitions[from], to)
}

// paymentSources returns every status from which to is reachable, in a stable order.
func paymentSources(to entity.PaymentStatus) []entity.PaymentStatus {
	var sources []entity.PaymentStatus
	for from, next := range paymentTransitions {
		if slices.Contains(next, to) {
			sources = append(sources, from)
		}
	}
	slices.Sort(sources)
	return sources
}

var timeSlotLayouts = []string{"15:04", "3:04 PM", "3:04PM", "15:04:05"}

// BookingStart combines a YYYY-MM-DD date and a time-of-day slot in loc.
func BookingStart(date, timeSlot string, loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, false
	}

	slot := strings.ToUpper(strings.TrimSpace(timeSlot))
	for _, layout := range timeSlotLayouts {
		t, err := time.Parse(layout, slot)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
	}
	return time.Time{}, false
}

// CanRefund reports whether the booking starts at least RefundCutoff after now.
// Unparsable dates are never refundable.
func CanRefund(date, timeSlot string, now time.Time, loc *time.Location) bool {
	start, ok := BookingStart(date, timeSlot, loc)
	if !ok {
		return false
	}
	return start.Sub(now) >= RefundCutoff
}

// SplitPlatformFee returns the coach share and the platform fee. The fee is rounded to
// cents and the two always add up to amount.
func SplitPlatformFee(amount float64) (earnings, fee float64) {
	total := decimal.NewFromFloat(amount).Round(2)
	f := total.Mul(platformFeeRate).Round(2)
	return total.Sub(f).InexactFloat64(), f.InexactFloat64()
}

// minorToMajor converts gateway minor units ("5000") to currency units (50.00).
func minorToMajor(minor string) *float64 {
	minor = strings.TrimSpace(minor)
	if minor == "" {
		return nil
	}
	d, err := decimal.NewFromString(minor)
	if err != nil {
		return nil
	}
	v := d.Shift(-2).Round(2).InexactFloat64()
	return &v
}

func formatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func sumAmounts(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}
