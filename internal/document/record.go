package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/ironsheep/docverify/internal/location"
)

// Date is a calendar date without time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a date in the given time.Parse layout and rejects values
// that time.Parse would normalise (such as February 30).
func ParseDate(layout, value string) (*Date, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return nil, err
	}
	return &Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	p, err := ParseDate("2006-01-02", string(b))
	if err != nil {
		return err
	}
	*d = *p
	return nil
}

// IdentityRecord is the structured result of extracting a document.
type IdentityRecord struct {
	DocumentNumber string              `json:"documentNumber"`
	Surnames       string              `json:"surnames"`
	GivenNames     string              `json:"givenNames"`
	BirthDate      *Date               `json:"birthDate,omitempty"`
	BloodType      BloodType           `json:"bloodType"`
	Gender         Gender              `json:"gender"`
	Family         Family              `json:"documentFamily"`
	Nationality    string              `json:"nationality,omitempty"`
	Location       *location.Reference `json:"location,omitempty"`
	Biometrics     *BiometricReference `json:"biometrics,omitempty"`
	ExpiryDate     *Date               `json:"expiryDate,omitempty"`
	Truncated      bool                `json:"truncated,omitempty"`
	Confidence     int                 `json:"confidence"`
}

// Validate enforces the record invariants.
func (r *IdentityRecord) Validate() error {
	if strings.TrimSpace(r.DocumentNumber) == "" {
		return fmt.Errorf("%w: empty document number", ErrInternal)
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return fmt.Errorf("%w: confidence %d out of range", ErrInternal, r.Confidence)
	}
	return nil
}

// MaskedNumber returns the document number with all but the last three
// characters hidden, for log lines.
func (r *IdentityRecord) MaskedNumber() string {
	n := r.DocumentNumber
	if len(n) <= 3 {
		return strings.Repeat("*", len(n))
	}
	return strings.Repeat("*", len(n)-3) + n[len(n)-3:]
}
