package leave

import "errors"

var (
	ErrLeaveTypeNotFound   = errors.New("leave type not found")
	ErrEntitlementNotFound = errors.New("leave entitlement not found")
)
