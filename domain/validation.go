package domain

import (
	"github.com/go-playground/validator/v10"
)

var (
	regions = map[Region]struct{}{
		RegionNorthEast: {}, RegionNorthWest: {}, RegionSouthEast: {}, RegionSouthWest: {}, RegionCentral: {}, RegionVirtual: {},
	}
	issues = map[IssueAddressed]struct{}{
		IssueAirQuality: {}, IssueClimateChange: {}, IssueEnvironmentalJustice: {}, IssueFoodAccess: {},
		IssueLandConservation: {}, IssueRecycling: {}, IssueUrbanGreening: {}, IssueWaterQuality: {}, IssueWildlife: {},
	}
	requirementTypes = map[VolunteerRequirementType]struct{}{
		RequirementAdministrative: {}, RequirementEventSupport: {}, RequirementFieldWork: {}, RequirementFundraising: {},
		RequirementOutreach: {}, RequirementTechnical: {}, RequirementTranslation: {},
	}
)

func (r Region) Valid() bool {
	_, ok := regions[r]
	return ok
}

func (i IssueAddressed) Valid() bool {
	_, ok := issues[i]
	return ok
}

func (t VolunteerRequirementType) Valid() bool {
	_, ok := requirementTypes[t]
	return ok
}

func (f ProjectFrequency) Valid() bool {
	for _, v := range ProjectFrequencies {
		if v == f {
			return true
		}
	}
	return false
}

// RegisterValidations installs the enum tags used by the binding structs: region, issue, frequency, requirement.
func RegisterValidations(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		"region":      func(s string) bool { return Region(s).Valid() },
		"issue":       func(s string) bool { return IssueAddressed(s).Valid() },
		"frequency":   func(s string) bool { return ProjectFrequency(s).Valid() },
		"requirement": func(s string) bool { return VolunteerRequirementType(s).Valid() },
	}
	for tag, valid := range rules {
		valid := valid
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}
