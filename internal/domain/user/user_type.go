package user

import (
	"database/sql/driver"
	"fmt"
)

// Type is the closed set of account categories.
type Type string

const (
	TypeFounder  Type = "founder"
	TypeInvestor Type = "investor"
	TypeAdmin    Type = "admin"
)

// Types lists every valid Type in declaration order.
var Types = []Type{TypeFounder, TypeInvestor, TypeAdmin}

// ErrInvalidType is returned when a value is outside the Type set.
type ErrInvalidType struct {
	Value string
}

func (e *ErrInvalidType) Error() string {
	return fmt.Sprintf("invalid user type %q: must be one of founder, investor, admin", e.Value)
}

// ParseType converts s into a Type, rejecting anything outside the set.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", &ErrInvalidType{Value: s}
	}
	return t, nil
}

// IsValid reports whether t is one of the declared categories.
func (t Type) IsValid() bool {
	switch t {
	case TypeFounder, TypeInvestor, TypeAdmin:
		return true
	}
	return false
}

func (t Type) String() string {
	return string(t)
}

// Value implements driver.Valuer.
func (t Type) Value() (driver.Value, error) {
	if !t.IsValid() {
		return nil, &ErrInvalidType{Value: string(t)}
	}
	return string(t), nil
}

// Scan implements sql.Scanner.
func (t *Type) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		return &ErrInvalidType{Value: ""}
	default:
		return fmt.Errorf("cannot scan %T into user type", src)
	}

	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
