package filter

import (
	"marketplace/client/es"
	"marketplace/domain"

	"github.com/jinzhu/gorm"
)

// clause is one criterion rendered for every backend that evaluates predicates.
type clause struct {
	key   string
	sql   string
	args  []interface{}
	query es.H
	match func(p *domain.Project) bool
}

// Predicate is a compiled set of criteria, ANDed together. The state criterion is kept apart so that
// per-state counts can reuse the rest unchanged.
type Predicate struct {
	state   domain.ProjectState
	clauses []clause
}

func (p Predicate) State() domain.ProjectState {
	return p.state
}

// WithState returns a copy of p that selects state s instead.
func (p Predicate) WithState(s domain.ProjectState) Predicate {
	return Predicate{state: s, clauses: p.clauses}
}

// Keys lists the criteria p applies besides the state, in compile order.
func (p Predicate) Keys() []string {
	keys := make([]string, 0, len(p.clauses))
	for _, c := range p.clauses {
		keys = append(keys, c.key)
	}
	return keys
}

// Scope restricts db, whose model must be domain.Project, to the rows matching p.
func (p Predicate) Scope(db *gorm.DB) *gorm.DB {
	db = db.Where("projects.state = ?", p.state)
	for _, c := range p.clauses {
		db = db.Where(c.sql, c.args...)
	}
	return db
}

// Matches evaluates p against a loaded project, associations included.
func (p Predicate) Matches(project *domain.Project) bool {
	if project.State != p.state {
		return false
	}
	for _, c := range p.clauses {
		if !c.match(project) {
			return false
		}
	}
	return true
}

// ESQuery renders p as an Elasticsearch bool filter over the project index.
func (p Predicate) ESQuery() es.H {
	filters := make([]es.H, 0, len(p.clauses)+1)
	filters = append(filters, es.H{"term": es.H{"state": p.state}})
	for _, c := range p.clauses {
		filters = append(filters, c.query)
	}
	return es.H{"bool": es.H{"filter": filters}}
}
