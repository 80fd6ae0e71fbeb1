package workflow

import (
	"fmt"

	"github.com/orderdeskhq/orderdesk-backend/pkg/errors"
)

// PlanFastForward advances an order to its single canonical next status.
// The target runs through the full transition checks unchanged; fast-forward
// only removes the need for the caller to name the target explicitly.
func PlanFastForward(order OrderSnapshot, wctx Context) (*Plan, error) {
	next, ok := NextForwardStatus(order.Status)
	if !ok {
		return nil, errors.New(errors.CodeCannotAdvance,
			fmt.Sprintf("order in status %s cannot be advanced", order.Status))
	}
	wctx.Op = OpFastForward
	return PlanTransition(order, next, wctx)
}
