package fixedlayout

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/location"
)

var log = logrus.StandardLogger().WithField("package", "fixedlayout")

// Parser decodes records against a location table.
type Parser struct {
	Locations *location.Table
}

// NewParser returns a parser that resolves places of issue with tbl. A nil
// table leaves every location unresolved.
func NewParser(tbl *location.Table) *Parser {
	return &Parser{Locations: tbl}
}

// Parse decodes a raw record.
//
// Errors wrap document.ErrMalformedPayload when the record has the wrong
// length, lacks the identifier, or has no document number. Every other
// defect is reflected in the returned record's fields and confidence.
func (p *Parser) Parse(raw []byte) (*document.IdentityRecord, error) {
	if len(raw) != RecordLength {
		return nil, fmt.Errorf("%w: record is %d bytes, want %d", document.ErrMalformedPayload, len(raw), RecordLength)
	}
	if !bytes.Equal(fieldIdentifier.slice(raw), []byte(Identifier)) {
		return nil, fmt.Errorf("%w: identifier %q not found", document.ErrMalformedPayload, Identifier)
	}

	number := strings.TrimLeft(text(fieldNumber.slice(raw)), "0")
	if number == "" {
		return nil, fmt.Errorf("%w: empty document number", document.ErrMalformedPayload)
	}
	if !isDigits(number) {
		return nil, fmt.Errorf("%w: document number is not numeric", document.ErrMalformedPayload)
	}

	rec := &document.IdentityRecord{
		DocumentNumber: number,
		Surnames:       joinNames(fieldSurname1.slice(raw), fieldSurname2.slice(raw)),
		GivenNames:     joinNames(fieldGiven1.slice(raw), fieldGiven2.slice(raw)),
		Gender:         parseGender(fieldGender.slice(raw)[0]),
		BloodType:      document.ParseBloodType(text(fieldBloodGroup.slice(raw)) + text(fieldRh.slice(raw))),
		Family:         document.FamilyBarcode,
	}

	afis := text(fieldAFIS.slice(raw))
	card := text(fieldFingerprintCard.slice(raw))
	if afis != "" || card != "" {
		rec.Biometrics = &document.BiometricReference{AFISCode: afis, FingerprintCard: card}
	}

	rec.BirthDate, _ = document.ParseDate("20060102", text(fieldBirthDate.slice(raw)))
	if exp := text(fieldExpiryDate.slice(raw)); exp != "" {
		rec.ExpiryDate, _ = document.ParseDate("20060102", exp)
	}

	dept := text(fieldDepartment.slice(raw))
	muni := text(fieldMunicipality.slice(raw))
	if ref, ok := p.Locations.Resolve(dept, muni); ok {
		rec.Location = &ref
	}

	for _, f := range nameFields {
		if filled(f.slice(raw)) {
			rec.Truncated = true
			break
		}
	}

	rec.Confidence = confidence(rec)

	log.WithFields(logrus.Fields{
		"number":     rec.MaskedNumber(),
		"confidence": rec.Confidence,
		"truncated":  rec.Truncated,
	}).Debug("decoded fixed-layout record")

	return rec, nil
}

func confidence(rec *document.IdentityRecord) int {
	c := baselineConfidence
	if rec.Gender == document.GenderUnknown {
		c -= unknownPenalty
	}
	if rec.BloodType == document.BloodUnknown {
		c -= unknownPenalty
	}
	if rec.Location == nil {
		c -= unknownPenalty
	}
	if rec.BirthDate == nil {
		c -= unknownPenalty
	}
	if rec.Truncated {
		c -= truncationPenalty
	}
	return document.ClampScore(c)
}

func parseGender(b byte) document.Gender {
	switch b {
	case 'M', 'm':
		return document.GenderMale
	case 'F', 'f':
		return document.GenderFemale
	}
	return document.GenderUnknown
}

func isPadding(b byte) bool {
	return b == 0 || b == ' '
}

// filled reports whether the last byte of a field carries data.
func filled(b []byte) bool {
	return len(b) > 0 && !isPadding(b[len(b)-1])
}

// text decodes a Latin-1 field and strips its padding.
func text(b []byte) string {
	b = bytes.TrimFunc(b, func(r rune) bool { return r == 0 || r == ' ' })
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

func joinNames(parts ...[]byte) string {
	var out []string
	for _, p := range parts {
		if s := text(p); s != "" {
			out = append(out, strings.Join(strings.Fields(s), " "))
		}
	}
	return strings.Join(out, " ")
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
