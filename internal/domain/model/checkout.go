package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CheckoutStatus string

const (
	CheckoutStatusIdle       CheckoutStatus = "IDLE"
	CheckoutStatusSubmitting CheckoutStatus = "SUBMITTING"
	CheckoutStatusCompleted  CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed     CheckoutStatus = "FAILED"
)

type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// 請求先（チェックアウトフォーム）
type BillingDetails struct {
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	Company       string        `json:"company"`
	Country       string        `json:"country"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	Province      string        `json:"province"`
	ZipCode       string        `json:"zip_code"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email"`
	Notes         string        `json:"notes"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// 注文処理に渡す内容（カートのスナップショット）
type OrderRequest struct {
	Items    []CartLineItem
	Subtotal decimal.Decimal
	Billing  BillingDetails
}

type OrderConfirmation struct {
	OrderID  string          `json:"order_id"`
	Items    []CartLineItem  `json:"items"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placed_at"`
}
