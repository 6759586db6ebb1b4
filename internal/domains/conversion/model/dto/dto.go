package dto

type ConvertRequest struct {
	Amount string `json:"amount" validate:"required,positiveamount"`
	From   string `json:"from" validate:"required,iso4217"`
	To     string `json:"to" validate:"required,iso4217"`
}

type ConvertResponse struct {
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Rate            string `json:"rate"`
	ConvertedAmount string `json:"converted_amount"`
	ConvertedTo     string `json:"converted_to"`
	ExpiresAt       string `json:"expires_at"`
	Token           string `json:"token"`
}
