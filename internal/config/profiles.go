package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const BuiltinDefaultProfile = "default"

// BuiltinProfiles returns the site profiles available without a profiles file.
func BuiltinProfiles() []attendance.SiteProfile {
	mandatory := []time.Weekday{time.Monday, time.Thursday}
	nonMandatory := []time.Weekday{time.Sunday, time.Tuesday, time.Wednesday}

	return []attendance.SiteProfile{
		{
			Name:                 "default",
			Description:          "Head office export: comma separated, Browser time timestamps",
			PreferredDelimiter:   ',',
			TimestampColumn:      attendance.ColumnBrowserTime,
			MandatoryWeekdays:    attendance.NewWeekdaySet(mandatory...),
			NonMandatoryWeekdays: attendance.NewWeekdaySet(nonMandatory...),
		},
		{
			Name:                 "branch",
			Description:          "Branch office export: semicolon separated, Local Time timestamps",
			PreferredDelimiter:   ';',
			TimestampColumn:      attendance.ColumnLocalTime,
			MandatoryWeekdays:    attendance.NewWeekdaySet(mandatory...),
			NonMandatoryWeekdays: attendance.NewWeekdaySet(nonMandatory...),
		},
	}
}

// profilesFile is the on-disk layout of PROFILES_FILE.
type profilesFile struct {
	DefaultProfile string        `mapstructure:"default_profile"`
	Profiles       []profileFile `mapstructure:"profiles" validate:"dive"`
}

type profileFile struct {
	Name                     string   `mapstructure:"name" validate:"required"`
	Description              string   `mapstructure:"description"`
	Delimiter                string   `mapstructure:"delimiter"`
	PreferredDelimiter       string   `mapstructure:"preferred_delimiter"`
	TimestampColumn          string   `mapstructure:"timestamp_column"`
	MandatoryWeekdays        []string `mapstructure:"mandatory_weekdays"`
	NonMandatoryWeekdays     []string `mapstructure:"non_mandatory_weekdays"`
	TotalEmployees           *int     `mapstructure:"total_employees" validate:"omitempty,gt=0"`
	ExcludedUsers            []string `mapstructure:"excluded_users"`
	LowRequirementUsers      []string `mapstructure:"low_requirement_users"`
	MonthlyThresholdStandard *int     `mapstructure:"monthly_threshold_standard" validate:"omitempty,gt=0"`
	MonthlyThresholdLow      *int     `mapstructure:"monthly_threshold_low" validate:"omitempty,gt=0"`
}

// LoadProfileCatalog builds the catalog from the built-in profiles, the
// optional profiles file (whose entries replace built-ins of the same name)
// and the process-wide defaults, which only fill values a profile leaves unset.
func LoadProfileCatalog(cfg ProfilesConfig) (attendance.ProfileCatalog, error) {
	catalog := attendance.ProfileCatalog{
		DefaultName: BuiltinDefaultProfile,
		Profiles:    make(map[string]attendance.SiteProfile),
	}
	for _, p := range BuiltinProfiles() {
		catalog.Profiles[p.Name] = p
	}

	if cfg.File != "" {
		file, err := readProfilesFile(cfg.File)
		if err != nil {
			return attendance.ProfileCatalog{}, err
		}
		for _, pf := range file.Profiles {
			p, err := pf.toSiteProfile()
			if err != nil {
				return attendance.ProfileCatalog{}, fmt.Errorf("invalid profile in %s: %w", cfg.File, err)
			}
			catalog.Profiles[p.Name] = p
		}
		if file.DefaultProfile != "" {
			catalog.DefaultName = file.DefaultProfile
		}
	}

	if cfg.DefaultProfile != "" {
		catalog.DefaultName = cfg.DefaultProfile
	}

	total := attendance.ParseTotalEmployees(cfg.DefaultTotalEmployees)
	for name, p := range catalog.Profiles {
		if p.DefaultTotalEmployees == nil {
			p.DefaultTotalEmployees = total
		}
		if len(p.DefaultExcludedUsers) == 0 {
			p.DefaultExcludedUsers = cfg.DefaultExcludedUsers
		}
		if len(p.DefaultLowRequirementUsers) == 0 {
			p.DefaultLowRequirementUsers = cfg.DefaultLowRequirementUsers
		}
		catalog.Profiles[name] = p
	}

	if err := catalog.Validate(); err != nil {
		return attendance.ProfileCatalog{}, fmt.Errorf("site profile validation failed: %w", err)
	}
	return catalog, nil
}

func readProfilesFile(path string) (profilesFile, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return profilesFile{}, fmt.Errorf("failed to read profiles file %s: %w", path, err)
	}

	var file profilesFile
	if err := v.Unmarshal(&file); err != nil {
		return profilesFile{}, fmt.Errorf("failed to parse profiles file %s: %w", path, err)
	}
	if err := validator.New().Struct(file); err != nil {
		return profilesFile{}, fmt.Errorf("invalid profiles file %s: %w", path, err)
	}
	return file, nil
}

func (pf profileFile) toSiteProfile() (attendance.SiteProfile, error) {
	name := strings.TrimSpace(pf.Name)
	if name == "" {
		return attendance.SiteProfile{}, fmt.Errorf("profile name is required")
	}

	delimiter, err := parseDelimiter(pf.Delimiter)
	if err != nil {
		return attendance.SiteProfile{}, fmt.Errorf("profile %s: %w", name, err)
	}
	preferred, err := parseDelimiter(pf.PreferredDelimiter)
	if err != nil {
		return attendance.SiteProfile{}, fmt.Errorf("profile %s: %w", name, err)
	}
	mandatory, err := attendance.ParseWeekdaySet(pf.MandatoryWeekdays)
	if err != nil {
		return attendance.SiteProfile{}, fmt.Errorf("profile %s: mandatory_weekdays: %w", name, err)
	}
	nonMandatory, err := attendance.ParseWeekdaySet(pf.NonMandatoryWeekdays)
	if err != nil {
		return attendance.SiteProfile{}, fmt.Errorf("profile %s: non_mandatory_weekdays: %w", name, err)
	}

	timestampColumn := strings.TrimSpace(pf.TimestampColumn)
	if timestampColumn == "" {
		timestampColumn = attendance.ColumnBrowserTime
	}

	return attendance.SiteProfile{
		Name:                       name,
		Description:                pf.Description,
		Delimiter:                  delimiter,
		PreferredDelimiter:         preferred,
		TimestampColumn:            timestampColumn,
		MandatoryWeekdays:          mandatory,
		NonMandatoryWeekdays:       nonMandatory,
		DefaultTotalEmployees:      pf.TotalEmployees,
		DefaultExcludedUsers:       pf.ExcludedUsers,
		DefaultLowRequirementUsers: pf.LowRequirementUsers,
		MonthlyThresholdStandard:   intOrZero(pf.MonthlyThresholdStandard),
		MonthlyThresholdLow:        intOrZero(pf.MonthlyThresholdLow),
	}, nil
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// parseDelimiter accepts the literal character or its name; "" and "auto"
// mean auto-detect.
func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	}
	return 0, fmt.Errorf("unsupported delimiter %q", s)
}
