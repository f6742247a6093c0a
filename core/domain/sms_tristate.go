package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Tristate is a classification verdict that may not have been determined.
// Unknown is never interchangeable with False.
type Tristate int8

const (
	TristateUnknown Tristate = iota
	TristateTrue
	TristateFalse
)

// FromBool converts a definite verdict.
func FromBool(b bool) Tristate {
	if b {
		return TristateTrue
	}
	return TristateFalse
}

// FromPtr converts a nullable verdict; nil becomes Unknown.
func FromPtr(b *bool) Tristate {
	if b == nil {
		return TristateUnknown
	}
	return FromBool(*b)
}

func (t Tristate) IsKnown() bool { return t != TristateUnknown }
func (t Tristate) IsTrue() bool  { return t == TristateTrue }

// Ptr returns nil for Unknown.
func (t Tristate) Ptr() *bool {
	switch t {
	case TristateTrue:
		v := true
		return &v
	case TristateFalse:
		v := false
		return &v
	}
	return nil
}

func (t Tristate) String() string {
	switch t {
	case TristateTrue:
		return "true"
	case TristateFalse:
		return "false"
	}
	return "unknown"
}

func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case TristateTrue:
		return []byte("true"), nil
	case TristateFalse:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

func (t *Tristate) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "true":
		*t = TristateTrue
	case "false":
		*t = TristateFalse
	case "null", "":
		*t = TristateUnknown
	default:
		return fmt.Errorf("invalid tristate value: %s", data)
	}
	return nil
}

// Value maps Unknown to SQL NULL.
func (t Tristate) Value() (driver.Value, error) {
	switch t {
	case TristateTrue:
		return true, nil
	case TristateFalse:
		return false, nil
	}
	return nil, nil
}

func (t *Tristate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = TristateUnknown
	case bool:
		*t = FromBool(v)
	case int64:
		*t = FromBool(v != 0)
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Tristate", src)
	}
	return nil
}

func (t *Tristate) scanString(s string) error {
	switch strings.ToLower(s) {
	case "t", "true", "1":
		*t = TristateTrue
	case "f", "false", "0":
		*t = TristateFalse
	default:
		return fmt.Errorf("cannot scan %q into Tristate", s)
	}
	return nil
}
