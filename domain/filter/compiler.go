package filter

import (
	"sort"

	"marketplace/client/es"
	"marketplace/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

const (
	KeyProjectState             = "projectState"
	KeyIssueAddressed           = "issueAddressed"
	KeyProjectRegion            = "projectRegion"
	KeyVolunteerRequirementType = "volunteerRequirementType"
	KeyMonth                    = "month"
	KeyPageSize                 = "pageSize"
	KeyPage                     = "page"

	KeyProjectType    = "projectType"
	KeyFrequency      = "frequency"
	KeyProjectOwnerID = "projectOwnerId"
)

// DefaultState is selected when criteria carry no projectState.
const DefaultState = domain.StateApprovedActive

type compileFunc func(value string) clause

var (
	compilers = map[string]compileFunc{
		KeyIssueAddressed:           issueAddressed,
		KeyProjectRegion:            projectRegion,
		KeyVolunteerRequirementType: volunteerRequirementType,
		KeyMonth:                    month,

		// raw equality on a few plain columns
		KeyProjectType:    projectType,
		KeyFrequency:      frequency,
		KeyProjectOwnerID: projectOwnerID,
	}

	ignored = map[string]struct{}{KeyProjectState: {}, KeyPageSize: {}, KeyPage: {}}
)

// Compile turns listing criteria into a Predicate. It never fails: values are compared as given, so a
// malformed value matches nothing, and keys outside the known set are dropped. Empty values are treated as absent.
func Compile(criteria map[string]string) Predicate {
	p := Predicate{state: DefaultState}
	if s := criteria[KeyProjectState]; s != "" {
		p.state = domain.ProjectState(s)
	}

	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := criteria[key]
		if _, ok := ignored[key]; ok || value == "" {
			continue
		}
		compile, ok := compilers[key]
		if !ok {
			logrus.WithField("key", key).Debug("ignore unknown filter key")
			continue
		}
		c := compile(value)
		c.key = key
		p.clauses = append(p.clauses, c)
	}
	return p
}

func issueAddressed(value string) clause {
	issue := domain.IssueAddressed(value)
	return clause{
		sql:   "EXISTS (SELECT 1 FROM project_issues WHERE project_issues.project_id = projects.id AND project_issues.issue = ?)",
		args:  []interface{}{issue},
		query: es.H{"term": es.H{"issuesAddressed": issue}},
		match: func(p *domain.Project) bool {
			for _, i := range p.IssuesAddressed {
				if i == issue {
					return true
				}
			}
			return false
		},
	}
}

func projectRegion(value string) clause {
	region := domain.Region(value)
	return clause{
		sql:   "projects.region = ?",
		args:  []interface{}{region},
		query: es.H{"term": es.H{"region": region}},
		match: func(p *domain.Project) bool { return p.Region == region },
	}
}

func volunteerRequirementType(value string) clause {
	t := domain.VolunteerRequirementType(value)
	return clause{
		sql:   "EXISTS (SELECT 1 FROM volunteer_requirements WHERE volunteer_requirements.project_id = projects.id AND volunteer_requirements.type = ?)",
		args:  []interface{}{t},
		query: es.H{"term": es.H{"volunteerRequirements.type": t}},
		match: func(p *domain.Project) bool {
			for _, r := range p.VolunteerRequirements {
				if r.Type == t {
					return true
				}
			}
			return false
		},
	}
}

// month matches events starting in the named month, and recurring projects that happen at least monthly.
// An unknown month name keeps only the recurring branch.
func month(value string) clause {
	ordinal := domain.MonthOrdinal(value)
	dense := domain.MonthlyOrDenser()

	recurringSQL := "(projects.project_type = ? AND projects.frequency IN (?))"
	recurringQuery := es.H{"bool": es.H{"filter": []es.H{
		{"term": es.H{"projectType": domain.ProjectTypeRecurring}},
		{"terms": es.H{"frequency": dense}},
	}}}
	recurring := func(p *domain.Project) bool {
		return p.ProjectType == domain.ProjectTypeRecurring && p.Frequency.MonthlyOrDenser()
	}

	if ordinal == 0 {
		return clause{
			sql:   recurringSQL,
			args:  []interface{}{domain.ProjectTypeRecurring, dense},
			query: recurringQuery,
			match: recurring,
		}
	}

	return clause{
		sql:  "((projects.project_type = ? AND projects.start_month = ?) OR " + recurringSQL + ")",
		args: []interface{}{domain.ProjectTypeEvent, ordinal, domain.ProjectTypeRecurring, dense},
		query: es.H{"bool": es.H{
			"should": []es.H{
				{"bool": es.H{"filter": []es.H{
					{"term": es.H{"projectType": domain.ProjectTypeEvent}},
					{"term": es.H{"startMonth": ordinal}},
				}}},
				recurringQuery,
			},
			"minimum_should_match": 1,
		}},
		match: func(p *domain.Project) bool {
			return (p.ProjectType == domain.ProjectTypeEvent && p.StartMonth == ordinal) || recurring(p)
		},
	}
}

func projectType(value string) clause {
	t := domain.ProjectType(value)
	return clause{
		sql:   "projects.project_type = ?",
		args:  []interface{}{t},
		query: es.H{"term": es.H{"projectType": t}},
		match: func(p *domain.Project) bool { return p.ProjectType == t },
	}
}

func frequency(value string) clause {
	f := domain.ProjectFrequency(value)
	return clause{
		sql:   "projects.frequency = ?",
		args:  []interface{}{f},
		query: es.H{"term": es.H{"frequency": f}},
		match: func(p *domain.Project) bool { return p.Frequency == f },
	}
}

func projectOwnerID(value string) clause {
	id, err := types.ParseID(value)
	if err != nil {
		return never()
	}
	return clause{
		sql:   "projects.project_owner_id = ?",
		args:  []interface{}{id},
		query: es.H{"term": es.H{"projectOwnerId": id.String()}},
		match: func(p *domain.Project) bool { return p.ProjectOwnerID == id },
	}
}

func never() clause {
	return clause{
		sql:   "1 = 0",
		query: es.H{"bool": es.H{"must_not": es.H{"match_all": es.H{}}}},
		match: func(p *domain.Project) bool { return false },
	}
}
