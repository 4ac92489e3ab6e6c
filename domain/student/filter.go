package student

import (
	"fmt"
	"strings"

	"exampulse/domain/core"
)

// All is the filter value meaning "no filter"
const All = "all"

// Filter selects records whose Attribute equals Value. A zero Filter, or one
// whose Value is All, passes every record through.
type Filter struct {
	Attribute Attribute `json:"attribute,omitempty"`
	Value     string    `json:"value"`
}

// NoFilter is the pass-through filter
var NoFilter = Filter{Value: All}

// EducationFilter builds a parental education filter
func EducationFilter(level ParentalEducation) Filter {
	return Filter{Attribute: AttributeParentalEducation, Value: string(level)}
}

// IsAll reports whether the filter is a pass-through
func (f Filter) IsAll() bool {
	return f.Value == "" || strings.EqualFold(f.Value, All)
}

// Matches reports whether r passes the filter
func (f Filter) Matches(r Record) bool {
	if f.IsAll() {
		return true
	}
	return f.Attribute.Value(r) == f.Value
}

// Key is a stable cache key for the filter
func (f Filter) Key() string {
	if f.IsAll() {
		return All
	}
	return string(f.Attribute) + "=" + f.Value
}

func (f Filter) String() string { return f.Key() }

// Validate checks that a non pass-through filter names a known attribute and value
func (f Filter) Validate() error {
	if f.IsAll() {
		return nil
	}
	if !f.Attribute.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownAttribute, string(f.Attribute))
	}
	_, err := f.Attribute.Index(f.Value)
	return err
}

// ParseFilter reads "attribute:value", a bare "all", or a bare parental
// education level (the dashboard's default filter dimension).
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, All) {
		return NoFilter, nil
	}

	attr := AttributeParentalEducation
	value := s
	if i := strings.Index(s, ":"); i >= 0 {
		parsed, err := ParseAttribute(s[:i])
		if err != nil {
			return Filter{}, err
		}
		attr = parsed
		value = s[i+1:]
	}
	return NewFilter(attr, value)
}

// NewFilter normalizes value against the attribute's domain
func NewFilter(attr Attribute, value string) (Filter, error) {
	if strings.EqualFold(strings.TrimSpace(value), All) {
		return NoFilter, nil
	}
	canonical, err := attr.Normalize(value)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Attribute: attr, Value: canonical}, nil
}
