package dto

import (
	"time"

	"admissions_backend/internal/models"
)

type PaymentInitRequest struct {
	// Amount is advisory; the charged amount is the configured fee less any coupon.
	Amount      *float64 `json:"amount" validate:"omitempty,gt=0"`
	ProductInfo string   `json:"productinfo" validate:"max=255"`
	CouponCode  string   `json:"coupon_code" validate:"max=32"`
}

type CouponRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

type CouponResponse struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount,omitempty"`
	Message  string  `json:"message,omitempty"`
}

type PaymentRecord struct {
	ID            uint      `json:"id"`
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	PaymentMode   string    `json:"payment_mode,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewPaymentRecord(p *models.Payment) PaymentRecord {
	return PaymentRecord{
		ID:            p.ID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount.InexactFloat64(),
		Status:        string(p.Status),
		PaymentMode:   p.PaymentMode,
		CreatedAt:     p.CreatedAt,
	}
}

type PaymentData struct {
	TransactionID string  `json:"transactionId"`
	PaymentAmount float64 `json:"paymentAmount"`
	PaymentMethod string  `json:"paymentMethod"`
}

type PaymentStatusRecord struct {
	Status      string      `json:"status"`
	PaymentData PaymentData `json:"payment_data"`
}

type PaymentStatusResponse struct {
	Records []PaymentStatusRecord `json:"records"`
}
