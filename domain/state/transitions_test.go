package state_test

import (
	"marketplace/domain"
	"marketplace/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transitions", func() {
	var (
		pending  = domain.StatePendingApproval
		active   = domain.StateApprovedActive
		inactive = domain.StateApprovedInactive
		rejected = domain.StateRejected
	)

	//                     PENDING  ACTIVE  INACTIVE  REJECTED
	// PENDING_APPROVAL      -        X        X         X
	// APPROVED_ACTIVE       X        -        V         X
	// APPROVED_INACTIVE     X        V        -         X
	// REJECTED              V        X        X         -
	ownerTable := map[domain.ProjectState]map[domain.ProjectState]bool{
		pending:  {pending: true, active: false, inactive: false, rejected: false},
		active:   {pending: false, active: true, inactive: true, rejected: false},
		inactive: {pending: false, active: true, inactive: true, rejected: false},
		rejected: {pending: true, active: false, inactive: false, rejected: true},
	}

	//                     PENDING  ACTIVE  INACTIVE  REJECTED
	// PENDING_APPROVAL      -        V        X         V
	// APPROVED_ACTIVE       X        -        V         V
	// APPROVED_INACTIVE     X        V        -         V
	// REJECTED              V        V        X         -
	adminTable := map[domain.ProjectState]map[domain.ProjectState]bool{
		pending:  {pending: true, active: true, inactive: false, rejected: true},
		active:   {pending: false, active: true, inactive: true, rejected: true},
		inactive: {pending: false, active: true, inactive: true, rejected: true},
		rejected: {pending: true, active: true, inactive: false, rejected: true},
	}

	Describe("IsAllowed", func() {
		It("should match the project owner table for all sixteen pairs", func() {
			for _, from := range domain.ProjectStates {
				for _, to := range domain.ProjectStates {
					Expect(state.IsAllowed(domain.RoleProjectOwner, from, to)).To(Equal(ownerTable[from][to]), "%s -> %s", from, to)
				}
			}
		})

		It("should match the admin table for all sixteen pairs", func() {
			for _, from := range domain.ProjectStates {
				for _, to := range domain.ProjectStates {
					Expect(state.IsAllowed(domain.RoleAdmin, from, to)).To(Equal(adminTable[from][to]), "%s -> %s", from, to)
				}
			}
		})

		It("should treat staying in the same state as allowed", func() {
			for _, role := range domain.Roles {
				for _, s := range domain.ProjectStates {
					Expect(state.IsAllowed(role, s, s)).To(BeTrue())
				}
			}
		})

		It("should reject unknown roles and states", func() {
			Expect(state.IsAllowed(domain.Role("GUEST"), rejected, pending)).To(BeFalse())
			Expect(state.IsAllowed(domain.RoleAdmin, domain.ProjectState("ARCHIVED"), active)).To(BeFalse())
			Expect(state.IsAllowed(domain.RoleAdmin, pending, domain.ProjectState("ARCHIVED"))).To(BeFalse())
			Expect(state.IsAllowed(domain.RoleAdmin, domain.ProjectState("X"), domain.ProjectState("X"))).To(BeFalse())
		})
	})

	Describe("AllowedTargets", func() {
		It("should list the targets of each row", func() {
			Expect(state.AllowedTargets(domain.RoleProjectOwner, pending)).To(BeEmpty())
			Expect(state.AllowedTargets(domain.RoleProjectOwner, active)).To(Equal([]domain.ProjectState{inactive}))
			Expect(state.AllowedTargets(domain.RoleProjectOwner, rejected)).To(Equal([]domain.ProjectState{pending}))
			Expect(state.AllowedTargets(domain.RoleAdmin, pending)).To(Equal([]domain.ProjectState{active, rejected}))
			Expect(state.AllowedTargets(domain.Role("GUEST"), pending)).To(BeEmpty())
			Expect(state.AllowedTargets(domain.RoleAdmin, domain.ProjectState("X"))).To(BeEmpty())
		})
	})

	Describe("StateSet", func() {
		It("should report members", func() {
			s := state.SetOf(pending, rejected)
			Expect(s.Has(pending)).To(BeTrue())
			Expect(s.Has(rejected)).To(BeTrue())
			Expect(s.Has(active)).To(BeFalse())
			Expect(s.States()).To(Equal([]domain.ProjectState{pending, rejected}))
		})

		It("should panic on unknown states", func() {
			Expect(func() { state.SetOf(domain.ProjectState("X")) }).To(Panic())
		})
	})
})
