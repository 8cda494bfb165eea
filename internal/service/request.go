package service

import (
	"fmt"

	"fiscal-coupon/internal/coupon"
	"fiscal-coupon/internal/model"

	"github.com/shopspring/decimal"
)

// plan is a coupon request converted to printer arguments.
type plan struct {
	customer *coupon.Customer
	items    []coupon.ItemSpec
	discount decimal.Decimal
	charge   decimal.Decimal
	tax      model.TaxCode
	payments []coupon.Payment
	message  string
}

// issuePlan checks the shape of a coupon request and converts it. Value
// limits are left to the coupon machine.
func issuePlan(req *model.CouponRequest) (*plan, error) {
	if req == nil {
		return nil, model.NewValidationError("coupon", model.ErrCodeInvalidValue, "coupon request is required")
	}
	if len(req.Items) == 0 {
		return nil, model.NewValidationError("items", model.ErrCodeInvalidValue, "coupon must contain at least one item")
	}
	if len(req.Payments) == 0 {
		return nil, model.NewValidationError("payments", model.ErrCodeInvalidValue, "coupon must contain at least one payment")
	}

	p := &plan{
		discount: req.Discount,
		charge:   req.Charge,
		message:  req.PromotionalMessage,
	}

	if req.Customer != nil {
		c := customer(req.Customer)
		p.customer = &c
	}

	tax, err := taxCode(req.TaxCode)
	if err != nil {
		return nil, err
	}
	p.tax = tax

	p.items = make([]coupon.ItemSpec, len(req.Items))
	for i := range req.Items {
		spec, err := itemSpec(&req.Items[i])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		p.items[i] = spec
	}

	p.payments = make([]coupon.Payment, len(req.Payments))
	for i, pay := range req.Payments {
		method, err := model.ParsePaymentMethod(pay.Method)
		if err != nil {
			return nil, fmt.Errorf("payment %d: %w", i, err)
		}
		p.payments[i] = coupon.Payment{Method: method, Value: pay.Value, Description: pay.Description}
	}

	return p, nil
}

func customer(req *model.CustomerRequest) coupon.Customer {
	return coupon.Customer{Name: req.Name, Address: req.Address, Document: req.Document}
}

// itemSpec converts an item request. An empty unit means no unit and an
// empty tax code means no tax.
func itemSpec(req *model.ItemRequest) (coupon.ItemSpec, error) {
	if req == nil {
		return coupon.ItemSpec{}, model.NewValidationError("item", model.ErrCodeInvalidValue, "item is required")
	}

	unit := model.UnitEmpty
	if req.Unit != "" {
		u, err := model.ParseUnit(req.Unit)
		if err != nil {
			return coupon.ItemSpec{}, err
		}
		unit = u
	}

	tax, err := taxCode(req.TaxCode)
	if err != nil {
		return coupon.ItemSpec{}, err
	}

	return coupon.ItemSpec{
		Code:            req.Code,
		Description:     req.Description,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		Unit:            unit,
		UnitDescription: req.UnitDescription,
		TaxCode:         tax,
		Discount:        req.Discount,
		Charge:          req.Charge,
	}, nil
}

func taxCode(s string) (model.TaxCode, error) {
	if s == "" {
		return model.TaxNone, nil
	}
	return model.ParseTaxCode(s)
}

// couponView converts a coupon snapshot to its JSON form.
func couponView(c coupon.Coupon) *model.CouponView {
	view := &model.CouponView{
		Status:           c.Status,
		Items:            make([]model.ItemView, len(c.Items)),
		Payments:         make([]model.PaymentRequest, len(c.Payments)),
		TotalizedValue:   c.TotalizedValue,
		PaymentsTotal:    c.PaymentsTotal,
		HasBeenTotalized: c.HasBeenTotalized,
		Stale:            c.Stale,
	}

	if c.Customer != nil {
		view.Customer = &model.CustomerRequest{
			Name:     c.Customer.Name,
			Address:  c.Customer.Address,
			Document: c.Customer.Document,
		}
	}

	for i, it := range c.Items {
		view.Items[i] = model.ItemView{
			Handle:    it.Handle,
			Cancelled: it.Cancelled,
			ItemRequest: model.ItemRequest{
				Code:            it.Code,
				Description:     it.Description,
				Quantity:        it.Quantity,
				UnitPrice:       it.UnitPrice,
				Unit:            it.Unit.String(),
				UnitDescription: it.UnitDescription,
				TaxCode:         it.TaxCode.String(),
				Discount:        it.Discount,
				Charge:          it.Charge,
			},
		}
	}

	for i, p := range c.Payments {
		view.Payments[i] = model.PaymentRequest{
			Method:      p.Method.String(),
			Value:       p.Value,
			Description: p.Description,
		}
	}

	return view
}
