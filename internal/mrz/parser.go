package mrz

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docverify/internal/document"
)

var log = logrus.StandardLogger().WithField("package", "mrz")

// checkPenalty is taken off a full confidence for every failed field check.
const checkPenalty = 15

// Options configures the literal fields a parser accepts.
type Options struct {
	// DocumentCodes are the accepted two-character codes at the start of
	// line 1.
	DocumentCodes []string
	// Country is the accepted issuing state.
	Country string
	// Now anchors the birth-year century pivot.
	Now time.Time
}

// DefaultOptions accepts Colombian identity cards.
func DefaultOptions(now time.Time) Options {
	return Options{
		DocumentCodes: []string{"IC", "ID", "I<"},
		Country:       "COL",
		Now:           now,
	}
}

// Parser decodes TD1 zones.
type Parser struct {
	opts Options
}

func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Fields is the raw positional split of a zone, before interpretation.
type Fields struct {
	DocumentCode   string
	Country        string
	Number         string
	NumberCheck    byte
	Optional1      string
	BirthDate      string
	BirthCheck     byte
	Sex            byte
	ExpiryDate     string
	ExpiryCheck    byte
	Nationality    string
	Optional2      string
	CompositeCheck byte
	Names          string

	composite string
}

// Split validates the shape of text and cuts it into positional fields.
func Split(text string) (*Fields, error) {
	lines := Normalize(text)
	if len(lines) != lineCount {
		return nil, fmt.Errorf("%w: %d lines, want %d", document.ErrMalformedMRZ, len(lines), lineCount)
	}
	for i, l := range lines {
		if len(l) != lineLength {
			return nil, fmt.Errorf("%w: line %d has %d characters, want %d", document.ErrMalformedMRZ, i+1, len(l), lineLength)
		}
		for j := 0; j < len(l); j++ {
			if !validChar(l[j]) {
				return nil, fmt.Errorf("%w: line %d column %d: invalid character", document.ErrMalformedMRZ, i+1, j+1)
			}
		}
	}

	l1, l2, l3 := lines[0], lines[1], lines[2]
	return &Fields{
		DocumentCode:   l1[0:2],
		Country:        l1[2:5],
		Number:         l1[5:14],
		NumberCheck:    l1[14],
		Optional1:      l1[15:30],
		BirthDate:      l2[0:6],
		BirthCheck:     l2[6],
		Sex:            l2[7],
		ExpiryDate:     l2[8:14],
		ExpiryCheck:    l2[14],
		Nationality:    l2[15:18],
		Optional2:      l2[18:29],
		CompositeCheck: l2[29],
		Names:          l3,
		composite:      l1[5:30] + l2[0:7] + l2[8:15] + l2[18:29],
	}, nil
}

// Checks reports which check digits match.
type Checks struct {
	Number    bool
	Birth     bool
	Expiry    bool
	Composite bool
}

// FailedFields counts failed field checks, excluding the composite.
func (c Checks) FailedFields() int {
	n := 0
	for _, ok := range []bool{c.Number, c.Birth, c.Expiry} {
		if !ok {
			n++
		}
	}
	return n
}

// Verify computes every check digit of f.
func (f *Fields) Verify() Checks {
	return Checks{
		Number:    verify(f.Number, f.NumberCheck),
		Birth:     verify(f.BirthDate, f.BirthCheck),
		Expiry:    verify(f.ExpiryDate, f.ExpiryCheck),
		Composite: verify(f.composite, f.CompositeCheck),
	}
}

// Parse decodes a zone into an identity record.
//
// Shape errors wrap document.ErrMalformedMRZ and a foreign document code or
// issuing state wraps document.ErrUnexpectedDocumentFamily. Check digit
// mismatches only lower the record's confidence.
func (p *Parser) Parse(text string) (*document.IdentityRecord, error) {
	f, err := Split(text)
	if err != nil {
		return nil, err
	}
	if !p.acceptsCode(f.DocumentCode) {
		return nil, fmt.Errorf("%w: document code %q", document.ErrUnexpectedDocumentFamily, f.DocumentCode)
	}
	if p.opts.Country != "" && f.Country != p.opts.Country {
		return nil, fmt.Errorf("%w: issuing state %q", document.ErrUnexpectedDocumentFamily, f.Country)
	}

	number := strings.Trim(f.Number, "<")
	if number == "" {
		return nil, fmt.Errorf("%w: empty document number", document.ErrMalformedMRZ)
	}

	checks := f.Verify()
	surnames, given := splitNames(f.Names)
	rec := &document.IdentityRecord{
		DocumentNumber: number,
		Surnames:       surnames,
		GivenNames:     given,
		BirthDate:      p.birthDate(f.BirthDate),
		ExpiryDate:     expiryDate(f.ExpiryDate),
		Gender:         parseSex(f.Sex),
		Family:         document.FamilyTextBlock,
		Nationality:    strings.Trim(f.Nationality, "<"),
		Confidence:     confidence(checks),
	}

	log.WithFields(logrus.Fields{
		"number":     rec.MaskedNumber(),
		"confidence": rec.Confidence,
		"checks":     fmt.Sprintf("%+v", checks),
	}).Debug("decoded machine-readable zone")

	return rec, nil
}

func (p *Parser) acceptsCode(code string) bool {
	if len(p.opts.DocumentCodes) == 0 {
		return true
	}
	for _, c := range p.opts.DocumentCodes {
		if c == code {
			return true
		}
	}
	return false
}

func confidence(c Checks) int {
	failed := c.FailedFields()
	if failed == 0 && !c.Composite {
		failed = 1
	}
	return 100 - checkPenalty*failed
}

// splitNames splits the name line on the first "<<" into surnames and
// given names. Single fillers separate words within a part.
func splitNames(line string) (surnames, given string) {
	line = strings.TrimRight(line, "<")
	left, right, found := strings.Cut(line, "<<")
	surnames = words(left)
	if found {
		given = words(right)
	}
	return surnames, given
}

func words(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '<' }), " ")
}

func parseSex(c byte) document.Gender {
	switch c {
	case 'M':
		return document.GenderMale
	case 'F':
		return document.GenderFemale
	}
	return document.GenderUnknown
}

func yymmdd(s string) (yy int, mmdd string, ok bool) {
	if len(s) != 6 {
		return 0, "", false
	}
	yy, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, "", false
	}
	return yy, s[2:], true
}

// birthDate places two-digit years at or below the current two-digit year
// in this century and the rest in the last.
func (p *Parser) birthDate(s string) *document.Date {
	yy, mmdd, ok := yymmdd(s)
	if !ok {
		return nil
	}
	now := p.opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	century := now.Year() / 100 * 100
	year := century + yy
	if yy > now.Year()%100 {
		year -= 100
	}
	d, err := document.ParseDate("20060102", fmt.Sprintf("%04d%s", year, mmdd))
	if err != nil {
		return nil
	}
	return d
}

func expiryDate(s string) *document.Date {
	yy, mmdd, ok := yymmdd(s)
	if !ok {
		return nil
	}
	d, err := document.ParseDate("20060102", fmt.Sprintf("%04d%s", 2000+yy, mmdd))
	if err != nil {
		return nil
	}
	return d
}
