package model

import "github.com/shopspring/decimal"

// DeviceStatus is the state the device reports about itself.
type DeviceStatus struct {
	Model            string          `json:"model"`
	SerialNumber     string          `json:"serialNumber"`
	CouponOpen       bool            `json:"couponOpen"`
	PendingReadX     bool            `json:"pendingReadX"`
	PendingReduceZ   bool            `json:"pendingReduceZ"`
	CouponCounter    int64           `json:"couponCounter"`
	ReductionCounter int64           `json:"reductionCounter"`
	TillCash         decimal.Decimal `json:"tillCash"`
	GrandTotal       decimal.Decimal `json:"grandTotal"`
}
