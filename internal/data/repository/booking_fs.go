package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"sportify-backoffice/internal/data/entity"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

type bookingFirestore struct {
	client *firestore.Client
	log    *zap.Logger
}

func NewBookingFirestore(client *firestore.Client, log *zap.Logger) BookingRepository {
	return &bookingFirestore{
		client: client,
		log:    log.With(zap.String("repository", "booking"), zap.String("store", "firestore")),
	}
}

func (r *bookingFirestore) collection() *firestore.CollectionRef {
	return r.client.Collection(entity.CollectionBookings)
}

func decodeBooking(log *zap.Logger, snap *firestore.DocumentSnapshot) (*entity.Booking, error) {
	var b entity.Booking
	if err := snap.DataTo(&b); err != nil {
		return nil, fmt.Errorf("decode booking %s: %w", snap.Ref.ID, err)
	}
	b.ID = snap.Ref.ID
	if err := checkDecoded(log, b.ID, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingFirestore) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	snap, err := r.collection().Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID", zap.Error(err), zap.String("booking_id", id))
		return nil, fmt.Errorf("find booking %s: %w", id, err)
	}
	return decodeBooking(r.log, snap)
}

func (r *bookingFirestore) FindPayable(ctx context.Context, id string) (*entity.PaymentRecord, error) {
	booking, err := r.FindByID(ctx, id)
	if err != nil || booking == nil {
		return nil, err
	}
	return booking.PaymentRecord(), nil
}

func (r *bookingFirestore) UpdateIf(ctx context.Context, id string, cond entity.Condition, updates []entity.FieldUpdate) error {
	return updateIfFirestore(ctx, r.client, r.collection().Doc(id), cond, updates)
}

func (r *bookingFirestore) collect(ctx context.Context, q firestore.Query, into map[string]*entity.Booking) error {
	iter := q.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		b, err := decodeBooking(r.log, snap)
		if err != nil {
			return err
		}
		into[b.ID] = b
	}
}

// escrowBookings runs one query per disjunct over court bookings and merges them; Firestore "in"
// plus "or" on two fields would need a composite index per deployment.
func (r *bookingFirestore) escrowBookings(ctx context.Context, filter EscrowFilter) ([]*entity.Booking, error) {
	found := make(map[string]*entity.Booking)
	col := r.collection().Where("bookingType", "==", string(entity.KindCourt))

	var queries []firestore.Query
	switch filter {
	case EscrowHeld:
		queries = append(queries, col.Where("paymentStatus", "in", toStrings(entity.HeldPaymentStatuses)))
	case EscrowReleased:
		queries = append(queries, col.Where("paymentStatus", "==", string(entity.PaymentReleasedToVenue)))
	default:
		statuses := append(toStrings(entity.HeldPaymentStatuses), string(entity.PaymentReleasedToVenue))
		queries = append(queries,
			col.Where("paymentStatus", "in", statuses),
			col.Where("status", "==", string(entity.StatusRefundRequested)),
		)
	}

	for _, q := range queries {
		if err := r.collect(ctx, q, found); err != nil {
			return nil, err
		}
	}

	bookings := make([]*entity.Booking, 0, len(found))
	for _, b := range found {
		bookings = append(bookings, b)
	}
	slices.SortFunc(bookings, func(a, b *entity.Booking) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return bookings, nil
}

func (r *bookingFirestore) ListEscrow(ctx context.Context, filter EscrowFilter, limit, offset int) ([]*entity.Booking, int64, error) {
	bookings, err := r.escrowBookings(ctx, filter)
	if err != nil {
		r.log.Error("Failed to list escrow bookings", zap.Error(err), zap.String("filter", string(filter)))
		return nil, 0, fmt.Errorf("list escrow bookings: %w", err)
	}

	total := int64(len(bookings))
	if offset >= len(bookings) {
		return []*entity.Booking{}, total, nil
	}
	end := min(offset+limit, len(bookings))
	return bookings[offset:end], total, nil
}

func (r *bookingFirestore) PaymentTotals(ctx context.Context) ([]PaymentTotal, error) {
	tracked := append(toStrings(entity.HeldPaymentStatuses),
		string(entity.PaymentReleasedToVenue), string(entity.PaymentRefunded))

	iter := r.collection().
		Where("bookingType", "==", string(entity.KindCourt)).
		Where("paymentStatus", "in", tracked).
		Select("paymentStatus", "totalPrice").
		Documents(ctx)
	defer iter.Stop()

	byStatus := make(map[entity.PaymentStatus]*PaymentTotal)
	var order []entity.PaymentStatus
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			r.log.Error("Failed to sum bookings by payment status", zap.Error(err))
			return nil, fmt.Errorf("sum bookings by payment status: %w", err)
		}

		var row struct {
			PaymentStatus entity.PaymentStatus `firestore:"paymentStatus"`
			TotalPrice    float64              `firestore:"totalPrice"`
		}
		if err := snap.DataTo(&row); err != nil {
			return nil, fmt.Errorf("decode booking %s: %w", snap.Ref.ID, err)
		}

		t, ok := byStatus[row.PaymentStatus]
		if !ok {
			t = &PaymentTotal{PaymentStatus: row.PaymentStatus}
			byStatus[row.PaymentStatus] = t
			order = append(order, row.PaymentStatus)
		}
		t.Count++
		t.Amount += row.TotalPrice
	}

	totals := make([]PaymentTotal, 0, len(order))
	for _, s := range order {
		totals = append(totals, *byStatus[s])
	}
	return totals, nil
}
