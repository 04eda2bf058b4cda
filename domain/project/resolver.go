package project

import (
	"time"

	"marketplace/domain"
)

// Resolve computes the state a project ends up in once patch is applied at time now.
// The second result reports whether the state came from an implicit rule rather than patch.State.
//
// Rules, first match wins:
//  1. an explicit patch.State
//  2. REJECTED projects are resubmitted to PENDING_APPROVAL
//  3. APPROVED_INACTIVE projects whose end date is today or later become APPROVED_ACTIVE again
//  4. otherwise the state is kept
func Resolve(p *domain.Project, patch *domain.ProjectUpdating, now time.Time) (domain.ProjectState, bool) {
	if patch != nil && patch.State != nil {
		return *patch.State, false
	}

	switch p.State {
	case domain.StateRejected:
		return domain.StatePendingApproval, true
	case domain.StateApprovedInactive:
		end := p.EndDate
		if patch != nil && patch.EndDate != nil {
			end = patch.EndDate
		}
		if end != nil && !end.IsZero() && !end.Before(domain.DateOf(now)) {
			return domain.StateApprovedActive, true
		}
	}
	return p.State, false
}
