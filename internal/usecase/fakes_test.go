package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/internal/data/repository"
	"sportify-backoffice/pkg/mailer"

	"go.uber.org/zap"
)

var errStoreDown = errors.New("store unavailable")

func timeValue(v any) *time.Time {
	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}

func floatValue(v any) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[string]*entity.Booking
	updateErr error
	updates   int
	// beforeUpdate runs inside UpdateIf before the condition is checked.
	beforeUpdate func(b *entity.Booking)
}

func newFakeBookingRepo(bookings ...*entity.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{bookings: map[string]*entity.Booking{}}
	for _, b := range bookings {
		r.bookings[b.ID] = b
	}
	return r
}

func (r *fakeBookingRepo) get(id string) *entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id string) (*entity.Booking, error) {
	return r.get(id), nil
}

func (r *fakeBookingRepo) FindPayable(_ context.Context, id string) (*entity.PaymentRecord, error) {
	b := r.get(id)
	if b == nil {
		return nil, nil
	}
	return b.PaymentRecord(), nil
}

func (r *fakeBookingRepo) UpdateIf(_ context.Context, id string, cond entity.Condition, updates []entity.FieldUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	b, ok := r.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.beforeUpdate != nil {
		r.beforeUpdate(b)
	}
	if !cond.Matches(b.State()) {
		return repository.ErrConflict
	}

	r.updates++
	for _, u := range updates {
		switch u.Field {
		case entity.FieldStatus:
			b.Status = entity.Status(stringValue(u.Value))
		case entity.FieldPaymentStatus:
			b.PaymentStatus = entity.PaymentStatus(stringValue(u.Value))
		case entity.FieldPaymentID:
			b.PaymentID = stringValue(u.Value)
		case entity.FieldBillplzBillID:
			b.BillplzBillID = stringValue(u.Value)
		case entity.FieldPaidAmount:
			b.PaidAmount = floatValue(u.Value)
		case entity.FieldPaidAt:
			b.PaidAt = timeValue(u.Value)
		case entity.FieldFailedAt:
			b.FailedAt = timeValue(u.Value)
		case entity.FieldTransactionDetails:
			b.TransactionDetails, _ = u.Value.(*entity.TransactionDetails)
		case entity.FieldLastCallbackKey:
			b.LastCallbackKey = stringValue(u.Value)
		case entity.FieldReleasedAt:
			b.ReleasedAt = timeValue(u.Value)
		case entity.FieldReleasedBy:
			b.ReleasedBy = stringValue(u.Value)
		case entity.FieldRefundedAt:
			b.RefundedAt = timeValue(u.Value)
		case entity.FieldRefundedBy:
			b.RefundedBy = stringValue(u.Value)
		case entity.FieldRefundRequestRejected:
			b.RefundRequestRejected, _ = u.Value.(bool)
		case entity.FieldRefundRejectedAt:
			b.RefundRejectedAt = timeValue(u.Value)
		case entity.FieldRefundRejectedBy:
			b.RefundRejectedBy = stringValue(u.Value)
		case entity.FieldUpdatedAt:
			if t := timeValue(u.Value); t != nil {
				b.UpdatedAt = *t
			}
		}
	}
	return nil
}

func (r *fakeBookingRepo) ListEscrow(_ context.Context, filter repository.EscrowFilter, limit, offset int) ([]*entity.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Booking
	for _, b := range r.bookings {
		switch filter {
		case repository.EscrowHeld:
			if !b.PaymentStatus.IsHeld() {
				continue
			}
		case repository.EscrowReleased:
			if b.PaymentStatus != entity.PaymentReleasedToVenue {
				continue
			}
		}
		cp := *b
		out = append(out, &cp)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	return out[offset:min(offset+limit, len(out))], total, nil
}

func (r *fakeBookingRepo) PaymentTotals(_ context.Context) ([]repository.PaymentTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byStatus := map[entity.PaymentStatus]*repository.PaymentTotal{}
	for _, b := range r.bookings {
		t, ok := byStatus[b.PaymentStatus]
		if !ok {
			t = &repository.PaymentTotal{PaymentStatus: b.PaymentStatus}
			byStatus[b.PaymentStatus] = t
		}
		t.Count++
		t.Amount += b.TotalPrice
	}

	var out []repository.PaymentTotal
	for _, t := range byStatus {
		out = append(out, *t)
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[string]*entity.CoachAppointment
	updates      int
	// beforeUpdate runs inside UpdateIf before the condition is checked.
	beforeUpdate func(a *entity.CoachAppointment)
}

func newFakeAppointmentRepo(appts ...*entity.CoachAppointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{appointments: map[string]*entity.CoachAppointment{}}
	for _, a := range appts {
		r.appointments[a.ID] = a
	}
	return r
}

func (r *fakeAppointmentRepo) get(id string) *entity.CoachAppointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func (r *fakeAppointmentRepo) FindByID(_ context.Context, id string) (*entity.CoachAppointment, error) {
	return r.get(id), nil
}

func (r *fakeAppointmentRepo) FindPayable(_ context.Context, id string) (*entity.PaymentRecord, error) {
	a := r.get(id)
	if a == nil {
		return nil, nil
	}
	return a.PaymentRecord(), nil
}

func (r *fakeAppointmentRepo) UpdateIf(_ context.Context, id string, cond entity.Condition, updates []entity.FieldUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.beforeUpdate != nil {
		r.beforeUpdate(a)
	}
	if !cond.Matches(a.State()) {
		return repository.ErrConflict
	}

	r.updates++
	for _, u := range updates {
		switch u.Field {
		case entity.FieldStatus:
			a.Status = entity.Status(stringValue(u.Value))
		case entity.FieldPaymentStatus:
			a.PaymentStatus = entity.PaymentStatus(stringValue(u.Value))
		case entity.FieldPaymentID:
			a.PaymentID = stringValue(u.Value)
		case entity.FieldBillplzBillID:
			a.BillplzBillID = stringValue(u.Value)
		case entity.FieldPaidAmount:
			a.PaidAmount = floatValue(u.Value)
		case entity.FieldPaidAt:
			a.PaidAt = timeValue(u.Value)
		case entity.FieldLastCallbackKey:
			a.LastCallbackKey = stringValue(u.Value)
		case entity.FieldVerificationStatus:
			a.VerificationStatus = entity.VerificationStatus(stringValue(u.Value))
		case entity.FieldVerifiedAt:
			a.VerifiedAt = timeValue(u.Value)
		case entity.FieldVerifiedBy:
			a.VerifiedBy = stringValue(u.Value)
		case entity.FieldVerificationNotes:
			a.VerificationNotes = stringValue(u.Value)
		case entity.FieldProofPhotoBase64:
			if s, ok := u.Value.(string); ok {
				a.ProofPhotoBase64 = &s
			} else {
				a.ProofPhotoBase64 = nil
			}
		case entity.FieldProofNotes:
			if s, ok := u.Value.(string); ok {
				a.ProofNotes = &s
			} else {
				a.ProofNotes = nil
			}
		case entity.FieldProofUploadedAt:
			a.ProofUploadedAt = timeValue(u.Value)
		case entity.FieldPaymentReleased:
			a.PaymentReleasedToCoach, _ = u.Value.(bool)
		case entity.FieldPaymentReleasedAt:
			a.PaymentReleasedAt = timeValue(u.Value)
		case entity.FieldCoachEarnings:
			a.CoachEarnings = floatValue(u.Value)
		case entity.FieldPlatformFee:
			a.PlatformFee = floatValue(u.Value)
		}
	}
	return nil
}

func (r *fakeAppointmentRepo) ListWithProof(_ context.Context, statuses []entity.Status) ([]*entity.CoachAppointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cond := entity.Condition{StatusIn: statuses}
	var out []*entity.CoachAppointment
	for _, a := range r.appointments {
		if cond.Matches(a.State()) && a.HasProof() {
			cp := *a
			out = append(out, &cp)
		}
	}
	repository.SortByProofUploaded(out)
	return out, nil
}

func (r *fakeAppointmentRepo) Watch(ctx context.Context, statuses []entity.Status, fn func([]*entity.CoachAppointment)) error {
	appts, err := r.ListWithProof(ctx, statuses)
	if err != nil {
		return err
	}
	fn(appts)
	<-ctx.Done()
	return nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*entity.Notification
	order         []string
	err           error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: map[string]*entity.Notification{}}
}

func (r *fakeNotificationRepo) CreateIfAbsent(_ context.Context, n *entity.Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return false, r.err
	}
	if _, ok := r.notifications[n.ID]; ok {
		return false, nil
	}
	cp := *n
	r.notifications[n.ID] = &cp
	r.order = append(r.order, n.ID)
	return true, nil
}

func (r *fakeNotificationRepo) all() []*entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Notification, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.notifications[id])
	}
	return out
}

func (r *fakeNotificationRepo) byType(t entity.NotificationType) []*entity.Notification {
	var out []*entity.Notification
	for _, n := range r.all() {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *fakeSender) messages() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Message(nil), s.sent...)
}

type fakeGuard struct {
	held     map[string]bool
	released []string
}

func (g *fakeGuard) Acquire(_ context.Context, key string) (bool, error) {
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, key string) error {
	delete(g.held, key)
	g.released = append(g.released, key)
	return nil
}

func newTestNotifier(repo *fakeNotificationRepo) *notificationService {
	return &notificationService{
		repo: repo,
		log:  zap.NewNop(),
		now:  func() time.Time { return testNow },
	}
}

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
