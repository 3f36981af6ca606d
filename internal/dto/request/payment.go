package request

// BillplzCallback is the flat field set Billplz posts to the callback URL.
type BillplzCallback struct {
	BillID            string
	CollectionID      string
	Paid              string
	State             string
	Amount            string
	PaidAmount        string
	DueAt             string
	Email             string
	Mobile            string
	Name              string
	URL               string
	PaidAt            string
	TransactionID     string
	TransactionStatus string
	Signature         string
	Reference1        string
	Reference2        string
}

func NewBillplzCallback(fields map[string]string) *BillplzCallback {
	return &BillplzCallback{
		BillID:            fields["id"],
		CollectionID:      fields["collection_id"],
		Paid:              fields["paid"],
		State:             fields["state"],
		Amount:            fields["amount"],
		PaidAmount:        fields["paid_amount"],
		DueAt:             fields["due_at"],
		Email:             fields["email"],
		Mobile:            fields["mobile"],
		Name:              fields["name"],
		URL:               fields["url"],
		PaidAt:            fields["paid_at"],
		TransactionID:     fields["transaction_id"],
		TransactionStatus: fields["transaction_status"],
		Signature:         fields["x_signature"],
		Reference1:        fields["reference_1"],
		Reference2:        fields["reference_2"],
	}
}

type PaymentStatusRequest struct {
	BookingID   string `json:"bookingId" validate:"required"`
	BookingType string `json:"bookingType"`
}

type EscrowListRequest struct {
	PaginatedRequest
	Filter string `json:"filter" validate:"omitempty,oneof=all held released"`
}
