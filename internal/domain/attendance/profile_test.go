package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() SiteProfile {
	total := 25
	return SiteProfile{
		Name:                       "default",
		PreferredDelimiter:         ',',
		TimestampColumn:            ColumnBrowserTime,
		MandatoryWeekdays:          NewWeekdaySet(time.Monday, time.Thursday),
		NonMandatoryWeekdays:       NewWeekdaySet(time.Sunday, time.Tuesday, time.Wednesday),
		DefaultTotalEmployees:      &total,
		DefaultExcludedUsers:       []string{"Front Desk"},
		DefaultLowRequirementUsers: []string{"Ana Lima"},
	}
}

func TestSiteProfile_Policy_Defaults(t *testing.T) {
	policy := testProfile().Policy(nil, nil, "")

	assert.True(t, policy.ExcludedUsers.Contains("Front Desk"))
	assert.True(t, policy.LowRequirementUsers.Contains("Ana Lima"))
	require.NotNil(t, policy.TotalEmployees)
	assert.Equal(t, 25, *policy.TotalEmployees)
	assert.Equal(t, DefaultMonthlyThresholdStandard, policy.MonthlyThresholdStandard)
	assert.Equal(t, DefaultMonthlyThresholdLow, policy.MonthlyThresholdLow)
}

func TestSiteProfile_Policy_Overrides(t *testing.T) {
	exclude := "Bo Chen, Cy Diaz"
	low := ""

	policy := testProfile().Policy(&exclude, &low, "40")

	assert.Equal(t, []string{"Bo Chen", "Cy Diaz"}, policy.ExcludedUsers.Sorted())
	assert.Empty(t, policy.LowRequirementUsers)
	require.NotNil(t, policy.TotalEmployees)
	assert.Equal(t, 40, *policy.TotalEmployees)
}

func TestSiteProfile_Policy_InvalidTotalEmployees(t *testing.T) {
	policy := testProfile().Policy(nil, nil, "abc")

	assert.Nil(t, policy.TotalEmployees)
}

func TestSiteProfile_Validate(t *testing.T) {
	require.NoError(t, testProfile().Validate())

	overlapping := testProfile()
	overlapping.NonMandatoryWeekdays = NewWeekdaySet(time.Monday)
	assert.Error(t, overlapping.Validate())

	badDelimiter := testProfile()
	badDelimiter.Delimiter = '\t'
	assert.Error(t, badDelimiter.Validate())

	noMandatory := testProfile()
	noMandatory.MandatoryWeekdays = nil
	assert.Error(t, noMandatory.Validate())
}

func TestProfileCatalog_Lookup(t *testing.T) {
	branch := testProfile()
	branch.Name = "branch"
	catalog := ProfileCatalog{
		DefaultName: "default",
		Profiles: map[string]SiteProfile{
			"default": testProfile(),
			"branch":  branch,
		},
	}
	require.NoError(t, catalog.Validate())

	p, err := catalog.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "default", p.Name)

	p, err = catalog.Lookup("branch")
	require.NoError(t, err)
	assert.Equal(t, "branch", p.Name)

	_, err = catalog.Lookup("moon-base")
	assert.True(t, errors.Is(err, ErrUnknownProfile))

	names := []string{}
	for _, p := range catalog.List() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"branch", "default"}, names)
}

func TestIngestionError(t *testing.T) {
	err := &IngestionError{Err: ErrMissingColumns, Detail: "no user column"}

	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Equal(t, "required columns are missing: no user column", err.Error())
}
