package dto

// GiftCodesRequest asks for a batch of gift codes.
type GiftCodesRequest struct {
	Amount   string `json:"amount" binding:"required"`
	Quantity int    `json:"quantity"`
}

// GiftCodesResponse lists generated codes.
type GiftCodesResponse struct {
	Amount string   `json:"amount"`
	Codes  []string `json:"codes"`
}
