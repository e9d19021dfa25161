package payroll

import (
	"fmt"
	"strings"
	"time"
)

// Action is a run workflow command.
type Action string

const (
	ActionSubmitForReview Action = "submit-for-review"
	// ActionPublish is the manager sign-off under its older name. It shares
	// the guard and effects of ActionManagerApprove.
	ActionPublish        Action = "publish"
	ActionManagerApprove Action = "manager-approve"
	ActionFinanceApprove Action = "finance-approve"
	ActionReject         Action = "reject"
	ActionLock           Action = "lock"
	ActionUnlock         Action = "unlock"
)

type transition struct {
	from        []RunStatus
	to          RunStatus
	needsReason bool
}

var transitions = map[Action]transition{
	ActionSubmitForReview: {from: []RunStatus{RunStatusDraft}, to: RunStatusUnderReview},
	ActionPublish:         {from: []RunStatus{RunStatusUnderReview}, to: RunStatusPendingFinanceApproval},
	ActionManagerApprove:  {from: []RunStatus{RunStatusUnderReview}, to: RunStatusPendingFinanceApproval},
	ActionFinanceApprove:  {from: []RunStatus{RunStatusPendingFinanceApproval}, to: RunStatusApproved},
	ActionReject:          {from: []RunStatus{RunStatusUnderReview, RunStatusPendingFinanceApproval}, to: RunStatusRejected, needsReason: true},
	ActionLock:            {from: []RunStatus{RunStatusApproved}, to: RunStatusLocked},
	ActionUnlock:          {from: []RunStatus{RunStatusLocked}, to: RunStatusUnlocked, needsReason: true},
}

func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := transitions[a]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAction, s)
	}
	return a, nil
}

// RequiresReason reports whether the action must carry a non-blank reason.
func (a Action) RequiresReason() bool {
	return transitions[a].needsReason
}

// RequiredStatuses returns the statuses a run must be in for a to apply.
func (a Action) RequiredStatuses() []RunStatus {
	return transitions[a].from
}

// Apply moves the run through action on behalf of actorID. On a failed guard
// the run is left untouched. It returns the status the run had before.
func (r *Run) Apply(action Action, actorID string, reason string, at time.Time) (RunStatus, error) {
	t, ok := transitions[action]
	if !ok {
		return r.Status, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	if !statusIn(r.Status, t.from) {
		return r.Status, fmt.Errorf("%w: %s requires status %s, run %s is %s",
			ErrInvalidTransition, action, joinStatuses(t.from), r.RunCode, r.Status)
	}

	reason = strings.TrimSpace(reason)
	if t.needsReason && reason == "" {
		return r.Status, fmt.Errorf("%w: %s", ErrReasonRequired, action)
	}

	prev := r.Status
	r.Status = t.to
	r.UpdatedAt = at

	switch action {
	case ActionPublish, ActionManagerApprove:
		r.PayrollManagerID = &actorID
		r.ManagerApprovedAt = &at
	case ActionFinanceApprove:
		r.FinanceStaffID = &actorID
		r.FinanceApprovedAt = &at
		r.PaymentStatus = PaymentStatusPaid
	case ActionReject:
		r.RejectedBy = &actorID
		r.RejectedAt = &at
		r.RejectionReason = &reason
	case ActionLock:
		r.LockedAt = &at
	case ActionUnlock:
		r.UnlockedAt = &at
		r.UnlockReason = &reason
	}

	return prev, nil
}

func statusIn(s RunStatus, set []RunStatus) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

func joinStatuses(statuses []RunStatus) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = strings.ToUpper(string(s))
	}
	return strings.Join(parts, " or ")
}
