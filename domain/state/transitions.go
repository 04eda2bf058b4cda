package state

import (
	"fmt"
	"marketplace/domain"
)

// StateSet is a bit set of project states indexed by ordinal.
// The high bit marks a row as declared so that a missing row is distinguishable from "nothing allowed".
type StateSet uint8

const declared StateSet = 1 << 7

func SetOf(states ...domain.ProjectState) StateSet {
	s := declared
	for _, st := range states {
		i, ok := st.Ordinal()
		if !ok {
			panic(fmt.Sprintf("unknown project state %q", st))
		}
		s |= 1 << uint(i)
	}
	return s
}

func (s StateSet) Has(st domain.ProjectState) bool {
	i, ok := st.Ordinal()
	return ok && s&(1<<uint(i)) != 0
}

func (s StateSet) States() []domain.ProjectState {
	r := []domain.ProjectState{}
	for _, st := range domain.ProjectStates {
		if s.Has(st) {
			r = append(r, st)
		}
	}
	return r
}

// Table holds, for each from-state ordinal, the set of states it may move to.
type Table [domain.StateCount]StateSet

// transitionTables is indexed by role ordinal, then by from-state ordinal.
var transitionTables = [domain.RoleCount]Table{
	// PROJECT_OWNER
	{
		/* PENDING_APPROVAL  */ SetOf(),
		/* APPROVED_ACTIVE   */ SetOf(domain.StateApprovedInactive),
		/* APPROVED_INACTIVE */ SetOf(domain.StateApprovedActive),
		/* REJECTED          */ SetOf(domain.StatePendingApproval),
	},
	// ADMIN
	{
		/* PENDING_APPROVAL  */ SetOf(domain.StateApprovedActive, domain.StateRejected),
		/* APPROVED_ACTIVE   */ SetOf(domain.StateApprovedInactive, domain.StateRejected),
		/* APPROVED_INACTIVE */ SetOf(domain.StateApprovedActive, domain.StateRejected),
		/* REJECTED          */ SetOf(domain.StatePendingApproval, domain.StateApprovedActive),
	},
}

func init() {
	if err := verifyTables(transitionTables); err != nil {
		panic(err)
	}
}

func verifyTables(tables [domain.RoleCount]Table) error {
	for r, table := range tables {
		for s, row := range table {
			if row&declared == 0 {
				return fmt.Errorf("transition table of role %s has no row for state %s", domain.Roles[r], domain.ProjectStates[s])
			}
		}
	}
	return nil
}

// IsAllowed reports whether role may move a project from one state to another.
// Staying in the same state is always allowed; unknown roles or states never are.
func IsAllowed(role domain.Role, from, to domain.ProjectState) bool {
	r, ok := role.Ordinal()
	if !ok {
		return false
	}
	f, ok := from.Ordinal()
	if !ok || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	return transitionTables[r][f].Has(to)
}

// AllowedTargets lists the states role may move a project in state from to, excluding from itself.
func AllowedTargets(role domain.Role, from domain.ProjectState) []domain.ProjectState {
	r, ok := role.Ordinal()
	if !ok {
		return []domain.ProjectState{}
	}
	f, ok := from.Ordinal()
	if !ok {
		return []domain.ProjectState{}
	}
	return transitionTables[r][f].States()
}
