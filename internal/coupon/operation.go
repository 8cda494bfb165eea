package coupon

import (
	"fmt"

	"fiscal-coupon/internal/model"
)

// Operation is a command the machine accepts.
type Operation int

const (
	OpOpen Operation = iota + 1
	OpIdentifyCustomer
	OpAddItem
	OpCancelItem
	OpCancel
	OpTotalize
	OpAddPayment
	OpClose
	OpStatus
	OpSummarize
	OpCloseTill
	OpTillAddCash
	OpTillRemoveCash
)

var operationNames = map[Operation]string{
	OpOpen:             "open",
	OpIdentifyCustomer: "identify_customer",
	OpAddItem:          "add_item",
	OpCancelItem:       "cancel_item",
	OpCancel:           "cancel",
	OpTotalize:         "totalize",
	OpAddPayment:       "add_payment",
	OpClose:            "close",
	OpStatus:           "get_status",
	OpSummarize:        "summarize",
	OpCloseTill:        "close_till",
	OpTillAddCash:      "till_add_cash",
	OpTillRemoveCash:   "till_remove_cash",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// Operations lists every operation, in declaration order.
func Operations() []Operation {
	ops := make([]Operation, 0, len(operationNames))
	for op := OpOpen; op <= OpTillRemoveCash; op++ {
		ops = append(ops, op)
	}
	return ops
}

// transitions is the lifecycle table. A (state, operation) pair missing
// from it is illegal. Closed and Cancelled are terminal: the machine starts
// a fresh Idle coupon right after reaching them.
var transitions = map[model.CouponStatus]map[Operation]model.CouponStatus{
	model.StatusIdle: {
		OpOpen:             model.StatusOpen,
		OpIdentifyCustomer: model.StatusIdle,
		OpStatus:           model.StatusIdle,
		OpSummarize:        model.StatusIdle,
		OpCloseTill:        model.StatusIdle,
		OpTillAddCash:      model.StatusIdle,
		OpTillRemoveCash:   model.StatusIdle,
	},
	model.StatusOpen: {
		OpIdentifyCustomer: model.StatusOpen,
		OpAddItem:          model.StatusOpen,
		OpCancelItem:       model.StatusOpen,
		OpCancel:           model.StatusCancelled,
		OpTotalize:         model.StatusTotalized,
	},
	model.StatusTotalized: {
		OpAddPayment: model.StatusTotalized,
		OpClose:      model.StatusClosed,
	},
}

// Next returns the state op leads to from state, and whether op is legal
// there at all.
func Next(state model.CouponStatus, op Operation) (model.CouponStatus, bool) {
	to, ok := transitions[state][op]
	return to, ok
}

// Allowed lists the operations legal in state.
func Allowed(state model.CouponStatus) []Operation {
	var ops []Operation
	for _, op := range Operations() {
		if _, ok := transitions[state][op]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}
