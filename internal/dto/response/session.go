package response

import (
	"time"

	"sportify-backoffice/internal/data/entity"
)

type SessionResponse struct {
	ID                     string     `json:"id"`
	CoachID                string     `json:"coachId"`
	CoachName              string     `json:"coachName"`
	StudentName            string     `json:"studentName"`
	Date                   string     `json:"date"`
	TimeSlot               string     `json:"timeSlot"`
	EndTime                string     `json:"endTime"`
	Duration               int        `json:"duration"`
	Amount                 float64    `json:"amount"`
	Status                 string     `json:"status"`
	ProofPhotoBase64       string     `json:"proofPhotoBase64"`
	ProofNotes             string     `json:"proofNotes,omitempty"`
	ProofUploadedAt        *time.Time `json:"proofUploadedAt,omitempty"`
	VerificationStatus     string     `json:"verificationStatus,omitempty"`
	VerificationNotes      string     `json:"verificationNotes,omitempty"`
	VerifiedAt             *time.Time `json:"verifiedAt,omitempty"`
	PaymentReleasedToCoach bool       `json:"paymentReleasedToCoach"`
	CoachEarnings          *float64   `json:"coachEarnings,omitempty"`
	PlatformFee            *float64   `json:"platformFee,omitempty"`
}

func NewSessionResponse(a *entity.CoachAppointment) SessionResponse {
	resp := SessionResponse{
		ID:                     a.ID,
		CoachID:                a.CoachID,
		CoachName:              a.CoachName,
		StudentName:            a.StudentName,
		Date:                   a.Date,
		TimeSlot:               a.TimeSlot,
		EndTime:                a.EndTime,
		Duration:               a.Duration,
		Amount:                 a.ChargedAmount(),
		Status:                 string(a.Status),
		ProofUploadedAt:        a.ProofUploadedAt,
		VerificationStatus:     string(a.VerificationStatus),
		VerificationNotes:      a.VerificationNotes,
		VerifiedAt:             a.VerifiedAt,
		PaymentReleasedToCoach: a.PaymentReleasedToCoach,
		CoachEarnings:          a.CoachEarnings,
		PlatformFee:            a.PlatformFee,
	}
	if a.ProofPhotoBase64 != nil {
		resp.ProofPhotoBase64 = *a.ProofPhotoBase64
	}
	if a.ProofNotes != nil {
		resp.ProofNotes = *a.ProofNotes
	}
	return resp
}

func NewSessionResponses(appts []*entity.CoachAppointment) []SessionResponse {
	out := make([]SessionResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, NewSessionResponse(a))
	}
	return out
}
