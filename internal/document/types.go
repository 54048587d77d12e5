package document

import (
	"fmt"
	"strings"
)

// Gender is the decoded gender marker of a document holder.
type Gender int

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

var genderNames = map[Gender]string{
	GenderUnknown: "unknown",
	GenderMale:    "male",
	GenderFemale:  "female",
}

func (g Gender) String() string {
	if s, ok := genderNames[g]; ok {
		return s
	}
	return genderNames[GenderUnknown]
}

// MarshalText implements encoding.TextMarshaler.
func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognised values
// decode to GenderUnknown.
func (g *Gender) UnmarshalText(b []byte) error {
	*g = GenderUnknown
	for k, v := range genderNames {
		if v == string(b) {
			*g = k
		}
	}
	return nil
}

// BloodType is the ABO group and Rh factor printed on a document.
type BloodType int

const (
	BloodUnknown BloodType = iota
	BloodAPositive
	BloodANegative
	BloodBPositive
	BloodBNegative
	BloodABPositive
	BloodABNegative
	BloodOPositive
	BloodONegative
)

var bloodNames = map[BloodType]string{
	BloodUnknown:    "unknown",
	BloodAPositive:  "A+",
	BloodANegative:  "A-",
	BloodBPositive:  "B+",
	BloodBNegative:  "B-",
	BloodABPositive: "AB+",
	BloodABNegative: "AB-",
	BloodOPositive:  "O+",
	BloodONegative:  "O-",
}

func (b BloodType) String() string {
	if s, ok := bloodNames[b]; ok {
		return s
	}
	return bloodNames[BloodUnknown]
}

// MarshalText implements encoding.TextMarshaler.
func (b BloodType) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BloodType) UnmarshalText(text []byte) error {
	*b = ParseBloodType(string(text))
	return nil
}

// ParseBloodType maps a printed group and Rh marker such as "AB+" or "O -"
// to a BloodType. Anything it does not recognise is BloodUnknown.
func ParseBloodType(s string) BloodType {
	s = strings.ToUpper(strings.Join(strings.Fields(s), ""))
	for k, v := range bloodNames {
		if k != BloodUnknown && v == s {
			return k
		}
	}
	return BloodUnknown
}

// Family identifies how identity fields are encoded on a document.
type Family int

const (
	// FamilyBarcode documents carry a fixed-layout record in a 2D barcode.
	FamilyBarcode Family = iota + 1
	// FamilyTextBlock documents carry a three-line machine-readable zone.
	FamilyTextBlock
)

func (f Family) String() string {
	switch f {
	case FamilyBarcode:
		return "barcode"
	case FamilyTextBlock:
		return "text_block"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Type is the document type selector sent by the client.
type Type string

const (
	// TypeCedulaLegacy is the hologram citizen card with a PDF417 record on the back.
	TypeCedulaLegacy Type = "cedula_legacy"
	// TypeCedulaDigital is the polycarbonate citizen card with a TD1 zone.
	TypeCedulaDigital Type = "cedula_digital"
	// TypeForeignID is the resident foreigner card with a TD1 zone.
	TypeForeignID Type = "foreign_id"
)

// Types lists every supported selector in a stable order.
func Types() []Type {
	return []Type{TypeCedulaLegacy, TypeCedulaDigital, TypeForeignID}
}

// ParseType validates a selector string.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, err := t.Family(); err != nil {
		return "", err
	}
	return t, nil
}

// Family returns the encoding family for the type.
func (t Type) Family() (Family, error) {
	switch t {
	case TypeCedulaLegacy:
		return FamilyBarcode, nil
	case TypeCedulaDigital, TypeForeignID:
		return FamilyTextBlock, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDocumentType, string(t))
}

// BiometricReference holds the registry codes that link a card to the
// holder's fingerprint records.
type BiometricReference struct {
	AFISCode        string `json:"afisCode,omitempty"`
	FingerprintCard string `json:"fingerprintCard,omitempty"`
}

// Check is the outcome of one forensic signal.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Score  int    `json:"score"`
	Detail string `json:"detail"`
}

// ClampScore bounds a score to [0, 100].
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
