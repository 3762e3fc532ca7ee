package valueobject

import "fmt"

// EmploymentType is the applicant's employment category. The zero value is
// the "unset" state a fresh application draft starts in.
type EmploymentType struct {
	value string
}

const (
	employmentGovernment   = "government"
	employmentPrivate      = "private"
	employmentSelfEmployed = "self-employed"
)

var (
	EmploymentUnset        = EmploymentType{}
	EmploymentGovernment   = EmploymentType{value: employmentGovernment}
	EmploymentPrivate      = EmploymentType{value: employmentPrivate}
	EmploymentSelfEmployed = EmploymentType{value: employmentSelfEmployed}
)

var validEmploymentTypes = map[string]EmploymentType{
	"":                     EmploymentUnset,
	employmentGovernment:   EmploymentGovernment,
	employmentPrivate:      EmploymentPrivate,
	employmentSelfEmployed: EmploymentSelfEmployed,
}

// NewEmploymentType creates an EmploymentType from a raw string. The empty
// string maps to EmploymentUnset.
func NewEmploymentType(s string) (EmploymentType, error) {
	v, ok := validEmploymentTypes[s]
	if !ok {
		return EmploymentType{}, fmt.Errorf("%w: employment type %q", ErrInvalidValue, s)
	}
	return v, nil
}

func (e EmploymentType) String() string { return e.value }

// IsUnset reports whether the applicant has not picked an employment type yet.
func (e EmploymentType) IsUnset() bool { return e.value == "" }

func (e EmploymentType) Equal(other EmploymentType) bool { return e.value == other.value }
