package adaptor

import (
	"context"

	"sportify-backoffice/internal/dto/request"
	"sportify-backoffice/internal/dto/response"
	"sportify-backoffice/internal/usecase"
)

type stubCallbackService struct {
	fields map[string]string
	result *usecase.CallbackResult
	err    error
}

func (s *stubCallbackService) Process(_ context.Context, fields map[string]string) (*usecase.CallbackResult, error) {
	s.fields = fields
	return s.result, s.err
}

type stubStatusService struct {
	userID string
	req    *request.PaymentStatusRequest
	resp   *response.PaymentStatusResponse
	err    error
}

func (s *stubStatusService) Check(_ context.Context, userID string, req *request.PaymentStatusRequest) (*response.PaymentStatusResponse, error) {
	s.userID, s.req = userID, req
	return s.resp, s.err
}

type stubEscrowService struct {
	list      *response.PaginatedResponse[response.EscrowBookingResponse]
	listReq   *request.EscrowListRequest
	stats     *response.EscrowStatsResponse
	action    *response.ActionResponse
	err       error
	bookingID string
	adminID   string
}

func (s *stubEscrowService) ListPayments(_ context.Context, req *request.EscrowListRequest) (*response.PaginatedResponse[response.EscrowBookingResponse], error) {
	s.listReq = req
	return s.list, s.err
}

func (s *stubEscrowService) Stats(context.Context) (*response.EscrowStatsResponse, error) {
	return s.stats, s.err
}

func (s *stubEscrowService) do(bookingID, adminID string) (*response.ActionResponse, error) {
	s.bookingID, s.adminID = bookingID, adminID
	return s.action, s.err
}

func (s *stubEscrowService) ReleaseToVenue(_ context.Context, bookingID, adminID string) (*response.ActionResponse, error) {
	return s.do(bookingID, adminID)
}

func (s *stubEscrowService) Refund(_ context.Context, bookingID, adminID string) (*response.ActionResponse, error) {
	return s.do(bookingID, adminID)
}

func (s *stubEscrowService) ApproveRefundRequest(_ context.Context, bookingID, adminID string) (*response.ActionResponse, error) {
	return s.do(bookingID, adminID)
}

func (s *stubEscrowService) RejectRefundRequest(_ context.Context, bookingID, adminID string) (*response.ActionResponse, error) {
	return s.do(bookingID, adminID)
}

type stubVerificationService struct {
	sessions  []response.SessionResponse
	updates   [][]response.SessionResponse
	verifyReq *request.VerifySessionRequest
	action    *response.ActionResponse
	err       error
}

func (s *stubVerificationService) ListSessions(context.Context, string) ([]response.SessionResponse, error) {
	return s.sessions, s.err
}

func (s *stubVerificationService) WatchSessions(_ context.Context, _ string, fn func([]response.SessionResponse)) error {
	if s.err != nil {
		return s.err
	}
	for _, u := range s.updates {
		fn(u)
	}
	return nil
}

func (s *stubVerificationService) Verify(_ context.Context, _, _ string, req *request.VerifySessionRequest) (*response.ActionResponse, error) {
	s.verifyReq = req
	return s.action, s.err
}

func (s *stubVerificationService) ReleasePayment(context.Context, string, string) (*response.ActionResponse, error) {
	return s.action, s.err
}
