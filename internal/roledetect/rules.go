package roledetect

import "regexp"

// Rule suggests a role when its pattern matches the normalized identifier.
// Rules are evaluated as a pure fold: the highest priority wins, declaration
// order breaks ties.
type Rule struct {
	Name     string
	Role     string
	Pattern  *regexp.Regexp
	Priority int
	// Generic marks catch-all patterns whose matches carry less signal.
	Generic bool
	// RequiresApproval marks suggestions that must be confirmed by an
	// administrator before use.
	RequiresApproval bool
}

// DomainRole is an exact-domain suggestion; domain matches are the strongest
// signal the heuristic has.
type DomainRole struct {
	Role       string
	Confidence int
}

// DefaultDomainRoles maps corporate mail domains to their default role.
func DefaultDomainRoles() map[string]DomainRole {
	return map[string]DomainRole{
		"hr.company.com":       {Role: "hr_manager", Confidence: 95},
		"admin.company.com":    {Role: "system_admin", Confidence: 95},
		"payroll.company.com":  {Role: "payroll_specialist", Confidence: 95},
		"contract.company.com": {Role: "contractor", Confidence: 90},
	}
}

// DefaultRules is the ordered pattern rule set. Order matters: it is the tie
// break for equal priorities.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:             "system admin",
			Role:             "system_admin",
			Pattern:          regexp.MustCompile(`(^|[._-])(sysadmin|root|superuser)([._-]|@|$)`),
			Priority:         80,
			RequiresApproval: true,
		},
		{
			Name:             "admin account",
			Role:             "admin",
			Pattern:          regexp.MustCompile(`(^|[._-])admin([._-]|@|$)`),
			Priority:         75,
			RequiresApproval: true,
		},
		{
			Name:     "hr staff",
			Role:     "hr_manager",
			Pattern:  regexp.MustCompile(`(^|[._-])hr([._-]|@|$)|human[._-]?resources`),
			Priority: 70,
		},
		{
			Name:     "payroll staff",
			Role:     "payroll_specialist",
			Pattern:  regexp.MustCompile(`payroll|compensation`),
			Priority: 70,
		},
		{
			Name:     "recruiting staff",
			Role:     "recruiter",
			Pattern:  regexp.MustCompile(`recruit|talent|sourcing`),
			Priority: 65,
		},
		{
			Name:     "team manager",
			Role:     "manager",
			Pattern:  regexp.MustCompile(`(^|[._-])(manager|mgr|lead|head)([._-]|@|$)`),
			Priority: 60,
		},
		{
			Name:             "external contractor",
			Role:             "contractor",
			Pattern:          regexp.MustCompile(`(^|[._-])(contractor|external|vendor)([._-]|@|$)`),
			Priority:         55,
			RequiresApproval: true,
		},
		{
			Name:     "intern account",
			Role:     "intern",
			Pattern:  regexp.MustCompile(`(^|[._-])(intern|trainee|apprentice)([._-]|@|$)`),
			Priority: 55,
		},
		{
			Name:     "generic staff",
			Role:     "employee",
			Pattern:  regexp.MustCompile(`(^|[._-])(staff|employee|user)([._-]|@|$)`),
			Priority: 40,
			Generic:  true,
		},
	}
}

// roleKeywords boost confidence when found anywhere in the identifier.
var roleKeywords = []string{"admin", "hr", "manager", "payroll", "recruiter", "lead"}
