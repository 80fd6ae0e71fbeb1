package workflow

import (
	"fmt"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	"github.com/orderdeskhq/orderdesk-backend/pkg/errors"
)

// CheckRoleGate is the single source of truth for who may perform which
// workflow operation. Ownership rules (call agent acting on its own order)
// consult the order snapshot; everything else is role-only.
func CheckRoleGate(op Operation, actor Actor, order OrderSnapshot) error {
	switch op {
	case OpAssignCallAgent:
		if actor.Role != enums.UserRoleSuperAdmin {
			return errors.New(errors.CodeForbidden, "only super admins may assign call agents")
		}
		return nil

	case OpLogCallAttempt:
		if actor.Role.IsStaff() {
			return nil
		}
		if actor.Role == enums.UserRoleCallAgent {
			if order.CallAssignedToID != nil && *order.CallAssignedToID == actor.ID {
				return nil
			}
			return errors.New(errors.CodeForbidden, "call agents may only log attempts on orders assigned to them")
		}
		return errors.New(errors.CodeForbidden, "role may not log call attempts")

	case OpSelectDeliveryAgent, OpAssignDeliveryAgent, OpFastForward, OpUpdateStatus:
		if actor.Role.IsStaff() {
			return nil
		}
		return errors.New(errors.CodeForbidden, fmt.Sprintf("role %s may not perform %s", actor.Role, op))

	default:
		return errors.New(errors.CodeForbidden, fmt.Sprintf("unknown operation %s", op))
	}
}

// checkOverride applies the delivery-assignment escape hatch: diverging from
// the selected agent requires a super admin plus an explicit flag and reason.
func checkOverride(wctx Context) error {
	if wctx.Actor.Role != enums.UserRoleSuperAdmin {
		return errors.New(errors.CodeForbidden, "only super admins may override the selected delivery agent")
	}
	if !wctx.Override || trimmed(wctx.OverrideReason) == "" {
		return errors.New(errors.CodePrerequisite, "override requires the override flag and a reason").
			WithReason(errors.ReasonOverrideFlagOrReasonMissing)
	}
	return nil
}
