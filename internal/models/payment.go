package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Payment struct {
	BaseModel
	UserID           uint            `gorm:"index;not null" json:"user_id"`
	TransactionID    string          `gorm:"size:64;uniqueIndex;not null" json:"transaction_id"`
	GatewayPaymentID string          `gorm:"size:64" json:"gateway_payment_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Discount         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	CouponCode       string          `gorm:"size:32" json:"coupon_code,omitempty"`
	ProductInfo      string          `gorm:"size:255" json:"product_info"`
	Status           PaymentStatus   `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentMode      string          `gorm:"size:32" json:"payment_mode"`
	ErrorMessage     string          `gorm:"size:500" json:"error_message,omitempty"`
	RawResponse      datatypes.JSON  `json:"-"`
	ProcessedAt      *time.Time      `json:"processed_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
