package student

import (
	"testing"

	"exampulse/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.True(t, f.IsAll())

	f, err = ParseFilter("ALL")
	require.NoError(t, err)
	assert.Equal(t, NoFilter, f)

	f, err = ParseFilter("master's degree")
	require.NoError(t, err)
	assert.Equal(t, EducationFilter(EducationMasters), f)

	f, err = ParseFilter("gender:Female")
	require.NoError(t, err)
	assert.Equal(t, Filter{Attribute: AttributeGender, Value: "female"}, f)

	f, err = ParseFilter("testPrep:all")
	require.NoError(t, err)
	assert.True(t, f.IsAll())

	_, err = ParseFilter("lunch:standard")
	assert.ErrorIs(t, err, core.ErrUnknownAttribute)

	_, err = ParseFilter("doctorate")
	assert.ErrorIs(t, err, core.ErrUnknownValue)
}

func TestFilterMatches(t *testing.T) {
	r := validRecord()
	assert.True(t, NoFilter.Matches(r))
	assert.True(t, Filter{}.Matches(r))
	assert.True(t, EducationFilter(EducationBachelors).Matches(r))
	assert.False(t, EducationFilter(EducationMasters).Matches(r))
	assert.True(t, Filter{Attribute: AttributeTestPrep, Value: "completed"}.Matches(r))
}

func TestFilterKeyAndValidate(t *testing.T) {
	assert.Equal(t, "all", NoFilter.Key())
	assert.Equal(t, "all", Filter{}.Key())
	assert.Equal(t, "parentalEducation=master's degree", EducationFilter(EducationMasters).Key())

	assert.NoError(t, NoFilter.Validate())
	assert.NoError(t, EducationFilter(EducationMasters).Validate())
	assert.ErrorIs(t, Filter{Attribute: "lunch", Value: "x"}.Validate(), core.ErrUnknownAttribute)
	assert.ErrorIs(t, Filter{Attribute: AttributeGender, Value: "x"}.Validate(), core.ErrUnknownValue)
}
