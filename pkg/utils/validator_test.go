package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
	Filter    string `json:"filter" validate:"omitempty,oneof=all held released"`
	PerPage   int    `json:"per_page" validate:"min=1,max=100"`
}

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, ValidateStruct(sampleRequest{BookingID: "B1", PerPage: 10}))

	errs := ValidateStruct(sampleRequest{Filter: "lost", PerPage: 500})
	assert.Equal(t, map[string]string{
		"bookingId": "This field is required",
		"filter":    "Must be one of: all, held, released",
		"per_page":  "Must be at most 100",
	}, errs)

	assert.Equal(t,
		"bookingId: This field is required; filter: Must be one of: all, held, released; per_page: Must be at most 100",
		FormatValidationErrors(errs))
}

func TestPagination(t *testing.T) {
	assert.Equal(t, DefaultPerPage, NormalizePerPage(0))
	assert.Equal(t, MaxPerPage, NormalizePerPage(1000))
	assert.Equal(t, 40, CalculateOffset(3, 20))
	assert.Equal(t, 0, CalculateOffset(0, 20))
	assert.Equal(t, 3, CalculateTotalPages(41, 20))
	assert.Equal(t, 0, CalculateTotalPages(0, 20))
}
