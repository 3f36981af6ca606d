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

type appointmentFirestore struct {
	client *firestore.Client
	log    *zap.Logger
}

func NewAppointmentFirestore(client *firestore.Client, log *zap.Logger) AppointmentRepository {
	return &appointmentFirestore{
		client: client,
		log:    log.With(zap.String("repository", "coach_appointment"), zap.String("store", "firestore")),
	}
}

func (r *appointmentFirestore) collection() *firestore.CollectionRef {
	return r.client.Collection(entity.CollectionCoachAppointments)
}

func decodeAppointment(log *zap.Logger, snap *firestore.DocumentSnapshot) (*entity.CoachAppointment, error) {
	var a entity.CoachAppointment
	if err := snap.DataTo(&a); err != nil {
		return nil, fmt.Errorf("decode coach appointment %s: %w", snap.Ref.ID, err)
	}
	a.ID = snap.Ref.ID
	if err := checkDecoded(log, a.ID, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentFirestore) FindByID(ctx context.Context, id string) (*entity.CoachAppointment, error) {
	snap, err := r.collection().Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find coach appointment by ID", zap.Error(err), zap.String("appointment_id", id))
		return nil, fmt.Errorf("find coach appointment %s: %w", id, err)
	}
	return decodeAppointment(r.log, snap)
}

func (r *appointmentFirestore) FindPayable(ctx context.Context, id string) (*entity.PaymentRecord, error) {
	appt, err := r.FindByID(ctx, id)
	if err != nil || appt == nil {
		return nil, err
	}
	return appt.PaymentRecord(), nil
}

func (r *appointmentFirestore) UpdateIf(ctx context.Context, id string, cond entity.Condition, updates []entity.FieldUpdate) error {
	return updateIfFirestore(ctx, r.client, r.collection().Doc(id), cond, updates)
}

func (r *appointmentFirestore) query(statuses []entity.Status) firestore.Query {
	return r.collection().Where("status", "in", toStrings(statuses))
}

// withProof keeps documents carrying a proof photo, newest proof first.
func withProof(log *zap.Logger, snaps []*firestore.DocumentSnapshot) ([]*entity.CoachAppointment, error) {
	appts := make([]*entity.CoachAppointment, 0, len(snaps))
	for _, snap := range snaps {
		a, err := decodeAppointment(log, snap)
		if err != nil {
			return nil, err
		}
		if a.HasProof() {
			appts = append(appts, a)
		}
	}
	SortByProofUploaded(appts)
	return appts, nil
}

func (r *appointmentFirestore) ListWithProof(ctx context.Context, statuses []entity.Status) ([]*entity.CoachAppointment, error) {
	snaps, err := r.query(statuses).Documents(ctx).GetAll()
	if err != nil {
		r.log.Error("Failed to list appointments with proof", zap.Error(err))
		return nil, fmt.Errorf("list appointments with proof: %w", err)
	}
	return withProof(r.log, snaps)
}

func (r *appointmentFirestore) Watch(ctx context.Context, statuses []entity.Status, fn func([]*entity.CoachAppointment)) error {
	it := r.query(statuses).Snapshots(ctx)
	defer it.Stop()

	for {
		qs, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || err == iterator.Done {
				return nil
			}
			return fmt.Errorf("watch coach appointments: %w", err)
		}

		snaps, err := qs.Documents.GetAll()
		if err != nil {
			return fmt.Errorf("read watched appointments: %w", err)
		}
		appts, err := withProof(r.log, snaps)
		if err != nil {
			return err
		}
		fn(appts)
	}
}

// SortByProofUploaded orders appointments by proof upload time, newest first, missing last.
func SortByProofUploaded(appts []*entity.CoachAppointment) {
	slices.SortStableFunc(appts, func(a, b *entity.CoachAppointment) int {
		switch {
		case a.ProofUploadedAt == nil && b.ProofUploadedAt == nil:
			return strings.Compare(a.ID, b.ID)
		case a.ProofUploadedAt == nil:
			return 1
		case b.ProofUploadedAt == nil:
			return -1
		}
		if c := b.ProofUploadedAt.Compare(*a.ProofUploadedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
