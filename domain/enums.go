package domain

type ProjectState string

const (
	StatePendingApproval  ProjectState = "PENDING_APPROVAL"
	StateApprovedActive   ProjectState = "APPROVED_ACTIVE"
	StateApprovedInactive ProjectState = "APPROVED_INACTIVE"
	StateRejected         ProjectState = "REJECTED"
)

// ProjectStates lists every lifecycle state, in ordinal order.
var ProjectStates = [...]ProjectState{StatePendingApproval, StateApprovedActive, StateApprovedInactive, StateRejected}

// StateCount is the number of lifecycle states; state-indexed tables are sized by it.
const StateCount = len(ProjectStates)

// Ordinal returns the index of s in ProjectStates.
func (s ProjectState) Ordinal() (int, bool) {
	for i, v := range ProjectStates {
		if v == s {
			return i, true
		}
	}
	return -1, false
}

func (s ProjectState) Valid() bool {
	_, ok := s.Ordinal()
	return ok
}

type Role string

const (
	RoleProjectOwner Role = "PROJECT_OWNER"
	RoleAdmin        Role = "ADMIN"
)

var Roles = [...]Role{RoleProjectOwner, RoleAdmin}

const RoleCount = len(Roles)

func (r Role) Ordinal() (int, bool) {
	for i, v := range Roles {
		if v == r {
			return i, true
		}
	}
	return -1, false
}

type ProjectType string

const (
	ProjectTypeEvent     ProjectType = "EVENT"
	ProjectTypeRecurring ProjectType = "RECURRING"
)

// ProjectFrequency is ordered from the densest recurrence to the sparsest.
type ProjectFrequency string

const (
	FrequencyEveryDay          ProjectFrequency = "EVERY_DAY"
	FrequencyFewTimesAWeek     ProjectFrequency = "FEW_TIMES_A_WEEK"
	FrequencyOnceAWeek         ProjectFrequency = "ONCE_A_WEEK"
	FrequencyOnceEveryTwoWeeks ProjectFrequency = "ONCE_EVERY_TWO_WEEKS"
	FrequencyFewTimesAMonth    ProjectFrequency = "FEW_TIMES_A_MONTH"
	FrequencyOnceAMonth        ProjectFrequency = "ONCE_A_MONTH"
	FrequencyFewTimesAYear     ProjectFrequency = "FEW_TIMES_A_YEAR"
	FrequencyOnceAYear         ProjectFrequency = "ONCE_A_YEAR"
)

var ProjectFrequencies = [...]ProjectFrequency{
	FrequencyEveryDay, FrequencyFewTimesAWeek, FrequencyOnceAWeek, FrequencyOnceEveryTwoWeeks,
	FrequencyFewTimesAMonth, FrequencyOnceAMonth, FrequencyFewTimesAYear, FrequencyOnceAYear,
}

// MonthlyOrDenser returns the frequencies whose recurrence period is a month or shorter.
// A recurring project with one of these frequencies happens within every calendar month.
func MonthlyOrDenser() []ProjectFrequency {
	var r []ProjectFrequency
	for _, f := range ProjectFrequencies {
		r = append(r, f)
		if f == FrequencyOnceAMonth {
			break
		}
	}
	return r
}

func (f ProjectFrequency) MonthlyOrDenser() bool {
	for _, v := range MonthlyOrDenser() {
		if v == f {
			return true
		}
	}
	return false
}

type Region string

const (
	RegionNorthEast Region = "NORTH_EAST"
	RegionNorthWest Region = "NORTH_WEST"
	RegionSouthEast Region = "SOUTH_EAST"
	RegionSouthWest Region = "SOUTH_WEST"
	RegionCentral   Region = "CENTRAL"
	RegionVirtual   Region = "VIRTUAL"
)

type IssueAddressed string

const (
	IssueAirQuality           IssueAddressed = "AIR_QUALITY"
	IssueClimateChange        IssueAddressed = "CLIMATE_CHANGE"
	IssueEnvironmentalJustice IssueAddressed = "ENVIRONMENTAL_JUSTICE"
	IssueFoodAccess           IssueAddressed = "FOOD_ACCESS"
	IssueLandConservation     IssueAddressed = "LAND_CONSERVATION"
	IssueRecycling            IssueAddressed = "RECYCLING"
	IssueUrbanGreening        IssueAddressed = "URBAN_GREENING"
	IssueWaterQuality         IssueAddressed = "WATER_QUALITY"
	IssueWildlife             IssueAddressed = "WILDLIFE"
)

type VolunteerRequirementType string

const (
	RequirementAdministrative VolunteerRequirementType = "ADMINISTRATIVE"
	RequirementEventSupport   VolunteerRequirementType = "EVENT_SUPPORT"
	RequirementFieldWork      VolunteerRequirementType = "FIELD_WORK"
	RequirementFundraising    VolunteerRequirementType = "FUNDRAISING"
	RequirementOutreach       VolunteerRequirementType = "OUTREACH"
	RequirementTechnical      VolunteerRequirementType = "TECHNICAL"
	RequirementTranslation    VolunteerRequirementType = "TRANSLATION"
)

var months = [...]string{"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER"}

// MonthOrdinal maps an upper-case month name to 1..12, or 0 when the name is unknown.
func MonthOrdinal(name string) int {
	for i, m := range months {
		if m == name {
			return i + 1
		}
	}
	return 0
}
