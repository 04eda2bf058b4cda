package project

import (
	"fmt"
	"sort"
	"strings"

	"marketplace/domain"
	"marketplace/event"
)

// diffProperties lists the edited fields other than state.
func diffProperties(old, new *domain.Project) []event.UpdatedProperty {
	var props []event.UpdatedProperty
	add := func(name, o, n string) {
		if o != n {
			props = append(props, event.UpdatedProperty{PropertyName: name, OldValue: o, NewValue: n})
		}
	}
	add("title", old.Title, new.Title)
	add("description", old.Description, new.Description)
	add("coverImageUrl", old.CoverImageURL, new.CoverImageURL)
	add("volunteerSignupUrl", old.VolunteerSignupURL, new.VolunteerSignupURL)
	add("projectType", string(old.ProjectType), string(new.ProjectType))
	add("startDate", dateString(old.StartDate), dateString(new.StartDate))
	add("endDate", dateString(old.EndDate), dateString(new.EndDate))
	add("frequency", string(old.Frequency), string(new.Frequency))
	add("region", string(old.Region), string(new.Region))
	add("rejectionReason", old.RejectionReason, new.RejectionReason)
	add("issuesAddressed", issuesString(old.IssuesAddressed), issuesString(new.IssuesAddressed))
	add("volunteerRequirements", requirementsString(old.VolunteerRequirements), requirementsString(new.VolunteerRequirements))
	return props
}

func dateString(d *domain.Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.String()
}

func issuesString(issues []domain.IssueAddressed) string {
	s := make([]string, 0, len(issues))
	for _, i := range issues {
		s = append(s, string(i))
	}
	sort.Strings(s)
	return strings.Join(s, ",")
}

func requirementsString(reqs []domain.VolunteerRequirement) string {
	s := make([]string, 0, len(reqs))
	for _, r := range reqs {
		s = append(s, fmt.Sprintf("%s/%s/%d", r.Type, r.CommitmentLevel, r.Number))
	}
	return strings.Join(s, ",")
}
