package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponRecord is a finished coupon as kept in the fiscal journal.
type CouponRecord struct {
	ID                 uuid.UUID             `json:"id" db:"id"`
	CouponID           *CouponID             `json:"couponId,omitempty" db:"coupon_id"`
	Status             string                `json:"status" db:"status"`
	Abandoned          bool                  `json:"abandoned" db:"abandoned"`
	CustomerName       string                `json:"customerName,omitempty" db:"customer_name"`
	CustomerDocument   string                `json:"customerDocument,omitempty" db:"customer_document"`
	TotalizedValue     decimal.NullDecimal   `json:"totalizedValue" db:"totalized_value"`
	PaymentsTotal      decimal.Decimal       `json:"paymentsTotal" db:"payments_total"`
	PromotionalMessage string                `json:"promotionalMessage,omitempty" db:"promotional_message"`
	CreatedAt          time.Time             `json:"createdAt" db:"created_at"`
	Items              []CouponItemRecord    `json:"items"`
	Payments           []CouponPaymentRecord `json:"payments"`
}

// CouponItemRecord is a journaled coupon item.
type CouponItemRecord struct {
	ID              uuid.UUID       `json:"-" db:"id"`
	CouponRecordID  uuid.UUID       `json:"-" db:"coupon_record_id"`
	Position        int             `json:"position" db:"position"`
	Handle          ItemHandle      `json:"handle" db:"handle"`
	Code            string          `json:"code" db:"code"`
	Description     string          `json:"description" db:"description"`
	Quantity        decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Unit            string          `json:"unit" db:"unit"`
	UnitDescription string          `json:"unitDescription,omitempty" db:"unit_description"`
	TaxCode         string          `json:"taxCode" db:"tax_code"`
	Discount        decimal.Decimal `json:"discount" db:"discount"`
	Charge          decimal.Decimal `json:"charge" db:"charge"`
	Cancelled       bool            `json:"cancelled" db:"cancelled"`
}

// CouponPaymentRecord is a journaled coupon payment.
type CouponPaymentRecord struct {
	ID             uuid.UUID       `json:"-" db:"id"`
	CouponRecordID uuid.UUID       `json:"-" db:"coupon_record_id"`
	Position       int             `json:"position" db:"position"`
	Method         string          `json:"method" db:"method"`
	Value          decimal.Decimal `json:"value" db:"value"`
	Description    string          `json:"description,omitempty" db:"description"`
}

// CouponRequest is the payload for issuing a whole coupon in one call.
type CouponRequest struct {
	Customer           *CustomerRequest `json:"customer,omitempty"`
	Items              []ItemRequest    `json:"items"`
	Discount           decimal.Decimal  `json:"discount"`
	Charge             decimal.Decimal  `json:"charge"`
	TaxCode            string           `json:"taxCode"`
	Payments           []PaymentRequest `json:"payments"`
	PromotionalMessage string           `json:"promotionalMessage,omitempty"`
}

// CustomerRequest identifies the customer printed on the coupon.
type CustomerRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Document string `json:"document"`
}

// ItemRequest is a single item in a coupon request.
type ItemRequest struct {
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Unit            string          `json:"unit"`
	UnitDescription string          `json:"unitDescription,omitempty"`
	TaxCode         string          `json:"taxCode"`
	Discount        decimal.Decimal `json:"discount"`
	Charge          decimal.Decimal `json:"charge"`
}

// PaymentRequest is a single payment in a coupon request.
type PaymentRequest struct {
	Method      string          `json:"method"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description,omitempty"`
}

// TotalizeRequest is the payload for totalizing the open coupon.
type TotalizeRequest struct {
	Discount decimal.Decimal `json:"discount"`
	Charge   decimal.Decimal `json:"charge"`
	TaxCode  string          `json:"taxCode"`
}

// CloseRequest is the payload for closing the open coupon.
type CloseRequest struct {
	PromotionalMessage string `json:"promotionalMessage,omitempty"`
}

// CouponResponse is the outcome of a closed coupon.
type CouponResponse struct {
	JournalID      uuid.UUID       `json:"journalId"`
	CouponID       CouponID        `json:"couponId"`
	TotalizedValue decimal.Decimal `json:"totalizedValue"`
	PaymentsTotal  decimal.Decimal `json:"paymentsTotal"`
	Change         decimal.Decimal `json:"change"`
	Recoveries     []string        `json:"recoveries,omitempty"`
}

// ItemResponse is returned after adding an item to the open coupon.
type ItemResponse struct {
	Handle ItemHandle `json:"handle"`
}

// TotalizeResponse is returned after totalizing the open coupon.
type TotalizeResponse struct {
	TotalizedValue decimal.Decimal `json:"totalizedValue"`
}

// CouponView is a snapshot of the coupon in progress.
type CouponView struct {
	Status           CouponStatus     `json:"status"`
	Customer         *CustomerRequest `json:"customer,omitempty"`
	Items            []ItemView       `json:"items"`
	Payments         []PaymentRequest `json:"payments"`
	TotalizedValue   *decimal.Decimal `json:"totalizedValue,omitempty"`
	PaymentsTotal    decimal.Decimal  `json:"paymentsTotal"`
	HasBeenTotalized bool             `json:"hasBeenTotalized"`
	Stale            bool             `json:"stale,omitempty"`
}

// ItemView is an item of the coupon in progress.
type ItemView struct {
	Handle    ItemHandle `json:"handle"`
	Cancelled bool       `json:"cancelled"`
	ItemRequest
}
