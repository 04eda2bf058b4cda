package project

import (
	"sort"
	"time"

	"marketplace/bizerror"
	"marketplace/domain"
	"marketplace/domain/state"

	"github.com/fundwit/go-commons/types"
)

type StateChange struct {
	From     domain.ProjectState
	To       domain.ProjectState
	Implicit bool
}

func (c StateChange) Changed() bool {
	return c.From != c.To
}

// ApplyUpdate returns p with patch merged in, or ErrInvalidStateChange when role may not move p to the resolved state.
// p is not modified.
func ApplyUpdate(p domain.Project, patch *domain.ProjectUpdating, role domain.Role, now time.Time) (domain.Project, StateChange, error) {
	effective, implicit := Resolve(&p, patch, now)
	change := StateChange{From: p.State, To: effective, Implicit: implicit}
	if change.Changed() && !state.IsAllowed(role, change.From, change.To) {
		return p, change, bizerror.ErrInvalidStateChange
	}

	merge(&p, patch)
	p.State = effective
	if p.State != domain.StateRejected {
		p.RejectionReason = ""
	}
	p.SyncDerived()
	p.UpdatedAt = now.UTC()
	return p, change, nil
}

func merge(p *domain.Project, u *domain.ProjectUpdating) {
	if u == nil {
		return
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.CoverImageURL != nil {
		p.CoverImageURL = *u.CoverImageURL
	}
	if u.VolunteerSignupURL != nil {
		p.VolunteerSignupURL = *u.VolunteerSignupURL
	}
	if u.IssuesAddressed != nil {
		p.IssuesAddressed = distinctIssues(*u.IssuesAddressed)
	}
	if u.VolunteerRequirements != nil {
		p.VolunteerRequirements = numberRequirements(p.ID, *u.VolunteerRequirements)
	}
	if u.ProjectType != nil {
		p.ProjectType = *u.ProjectType
	}
	if u.StartDate != nil {
		d := *u.StartDate
		p.StartDate = &d
	}
	if u.EndDate != nil {
		d := *u.EndDate
		p.EndDate = &d
	}
	if u.Frequency != nil {
		p.Frequency = *u.Frequency
	}
	if u.Region != nil {
		p.Region = *u.Region
	}
	if u.RejectionReason != nil {
		p.RejectionReason = *u.RejectionReason
	}
}

// distinctIssues drops duplicates and sorts, matching the order issues are loaded in.
func distinctIssues(issues []domain.IssueAddressed) []domain.IssueAddressed {
	seen := make(map[domain.IssueAddressed]struct{}, len(issues))
	r := make([]domain.IssueAddressed, 0, len(issues))
	for _, i := range issues {
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		r = append(r, i)
	}
	sort.Slice(r, func(a, b int) bool { return r[a] < r[b] })
	return r
}

func numberRequirements(projectID types.ID, reqs []domain.VolunteerRequirement) []domain.VolunteerRequirement {
	r := make([]domain.VolunteerRequirement, len(reqs))
	for i, v := range reqs {
		v.ProjectID = projectID
		v.Seq = i + 1
		r[i] = v
	}
	return r
}
