package attendance

import (
	"fmt"
	"sort"
	"strings"
)

// SiteProfile describes how one office site exports its access log and
// which attendance policy defaults apply there.
type SiteProfile struct {
	Name        string
	Description string

	// Delimiter forces the field separator. Zero means auto-detect.
	Delimiter rune
	// PreferredDelimiter breaks ties when both candidates look consistent.
	PreferredDelimiter rune
	TimestampColumn    string

	MandatoryWeekdays    WeekdaySet
	NonMandatoryWeekdays WeekdaySet

	DefaultTotalEmployees      *int
	DefaultExcludedUsers       []string
	DefaultLowRequirementUsers []string

	// Zero selects DefaultMonthlyThresholdStandard / DefaultMonthlyThresholdLow.
	MonthlyThresholdStandard int
	MonthlyThresholdLow      int
}

// DelimiterCandidates lists the field separators accepted in uploaded logs.
var DelimiterCandidates = []rune{',', ';'}

func isDelimiterCandidate(r rune) bool {
	for _, c := range DelimiterCandidates {
		if c == r {
			return true
		}
	}
	return false
}

func (p SiteProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.Delimiter != 0 && !isDelimiterCandidate(p.Delimiter) {
		return fmt.Errorf("profile %s: unsupported delimiter %q", p.Name, p.Delimiter)
	}
	if p.PreferredDelimiter != 0 && !isDelimiterCandidate(p.PreferredDelimiter) {
		return fmt.Errorf("profile %s: unsupported preferred delimiter %q", p.Name, p.PreferredDelimiter)
	}
	if len(p.MandatoryWeekdays) == 0 {
		return fmt.Errorf("profile %s: at least one mandatory weekday is required", p.Name)
	}
	for d := range p.MandatoryWeekdays {
		if p.NonMandatoryWeekdays.Contains(d) {
			return fmt.Errorf("profile %s: %s is both mandatory and non-mandatory", p.Name, d)
		}
	}
	if p.MonthlyThresholdStandard < 0 || p.MonthlyThresholdLow < 0 {
		return fmt.Errorf("profile %s: thresholds must not be negative", p.Name)
	}
	return nil
}

// Policy builds the run policy. A nil user list falls back to the profile
// default, an empty string means "nobody". An empty totalEmployees falls back
// to the profile default; anything that is not a positive integer is absent.
func (p SiteProfile) Policy(excludeUsers, lowRequirementUsers *string, totalEmployees string) Policy {
	policy := Policy{
		ExcludedUsers:            NewUserSet(p.DefaultExcludedUsers...),
		LowRequirementUsers:      NewUserSet(p.DefaultLowRequirementUsers...),
		MandatoryWeekdays:        p.MandatoryWeekdays,
		NonMandatoryWeekdays:     p.NonMandatoryWeekdays,
		TotalEmployees:           p.DefaultTotalEmployees,
		MonthlyThresholdStandard: p.MonthlyThresholdStandard,
		MonthlyThresholdLow:      p.MonthlyThresholdLow,
	}
	if policy.MonthlyThresholdStandard == 0 {
		policy.MonthlyThresholdStandard = DefaultMonthlyThresholdStandard
	}
	if policy.MonthlyThresholdLow == 0 {
		policy.MonthlyThresholdLow = DefaultMonthlyThresholdLow
	}
	if excludeUsers != nil {
		policy.ExcludedUsers = ParseUserList(*excludeUsers)
	}
	if lowRequirementUsers != nil {
		policy.LowRequirementUsers = ParseUserList(*lowRequirementUsers)
	}
	if strings.TrimSpace(totalEmployees) != "" {
		policy.TotalEmployees = ParseTotalEmployees(totalEmployees)
	}
	return policy
}

// ProfileCatalog is the set of site profiles known to the service.
type ProfileCatalog struct {
	DefaultName string
	Profiles    map[string]SiteProfile
}

// Lookup resolves a profile by name; an empty name selects the default.
func (c ProfileCatalog) Lookup(name string) (SiteProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.DefaultName
	}
	profile, ok := c.Profiles[name]
	if !ok {
		return SiteProfile{}, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	return profile, nil
}

func (c ProfileCatalog) List() []SiteProfile {
	profiles := make([]SiteProfile, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles
}

func (c ProfileCatalog) Validate() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no site profiles configured")
	}
	for name, p := range c.Profiles {
		if name != p.Name {
			return fmt.Errorf("profile registered as %s is named %s", name, p.Name)
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if _, ok := c.Profiles[c.DefaultName]; !ok {
		return fmt.Errorf("default profile %q is not configured", c.DefaultName)
	}
	return nil
}
