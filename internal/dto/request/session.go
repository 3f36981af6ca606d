package request

type VerifySessionRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes" validate:"max=1000"`
}
