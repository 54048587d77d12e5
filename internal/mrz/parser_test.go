package mrz

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/docverify/internal/document"
)

var testNow = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

// colombianZone builds a zone with correct check digits.
func colombianZone(number, birth, sex, expiry, names string) []string {
	pad := func(s string, n int) string {
		return s + strings.Repeat("<", n-len(s))
	}
	num := pad(number, 9)
	l1 := "ICCOL" + num + string(CheckDigit(num)) + pad("1020304050", 15)
	l2 := birth + string(CheckDigit(birth)) + sex + expiry + string(CheckDigit(expiry)) + "COL" + pad("", 11)
	l2 += string(CheckDigit(l1[5:30] + l2[0:7] + l2[8:15] + l2[18:29]))
	return []string{l1, l2, pad(names, 30)}
}

func validZone() []string {
	return colombianZone("000123456", "900307", "F", "320115", "PEREZ<GOMEZ<<ANA<MARIA")
}

func testParser() *Parser {
	return NewParser(DefaultOptions(testNow))
}

func TestCheckDigit(t *testing.T) {
	tests := map[string]byte{
		"D23145890": '7',
		"740812":    '2',
		"120415":    '9',
		"<<<<<<":    '0',
		"":          '0',
	}
	for in, want := range tests {
		assert.Equal(t, string(want), string(CheckDigit(in)), "input %q", in)
	}
}

func TestParseICAOSample(t *testing.T) {
	p := NewParser(Options{DocumentCodes: []string{"I<"}, Country: "UTO", Now: testNow})
	rec, err := p.Parse("I<UTOD231458907<<<<<<<<<<<<<<<\n7408122F1204159UTO<<<<<<<<<<<6\nERIKSSON<<ANNA<MARIA<<<<<<<<<<")
	require.NoError(t, err)

	assert.Equal(t, "D23145890", rec.DocumentNumber)
	assert.Equal(t, "ERIKSSON", rec.Surnames)
	assert.Equal(t, "ANNA MARIA", rec.GivenNames)
	assert.Equal(t, document.GenderFemale, rec.Gender)
	assert.Equal(t, "UTO", rec.Nationality)
	assert.Equal(t, "1974-08-12", rec.BirthDate.String())
	assert.Equal(t, "2012-04-15", rec.ExpiryDate.String())
	assert.Equal(t, 100, rec.Confidence)
}

func TestParseColombianCard(t *testing.T) {
	rec, err := testParser().Parse(strings.Join(validZone(), "\n"))
	require.NoError(t, err)

	assert.Equal(t, "000123456", rec.DocumentNumber)
	assert.Equal(t, "PEREZ GOMEZ", rec.Surnames)
	assert.Equal(t, "ANA MARIA", rec.GivenNames)
	assert.Equal(t, document.FamilyTextBlock, rec.Family)
	assert.Equal(t, document.BloodUnknown, rec.BloodType)
	assert.Equal(t, "COL", rec.Nationality)
	assert.Equal(t, "1990-03-07", rec.BirthDate.String())
	assert.Equal(t, "2032-01-15", rec.ExpiryDate.String())
	assert.Equal(t, 100, rec.Confidence)
	assert.NoError(t, rec.Validate())
}

func TestParseNormalizesOCRNoise(t *testing.T) {
	z := validZone()
	noisy := "\n  " + strings.ToLower(z[0][:10]) + " " + z[0][10:] + "\r\n\n" +
		strings.ReplaceAll(z[1], "<", "«") + "\n" +
		strings.ReplaceAll(z[2], "<", "(") + "\n\n"

	rec, err := testParser().Parse(noisy)
	require.NoError(t, err)
	assert.Equal(t, 100, rec.Confidence)
	assert.Equal(t, "PEREZ GOMEZ", rec.Surnames)
}

func TestParseShapeErrors(t *testing.T) {
	z := validZone()
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"two lines", z[0] + "\n" + z[1]},
		{"four lines", strings.Join(append(z, z[2]), "\n")},
		{"short line", z[0] + "\n" + z[1][:29] + "\n" + z[2]},
		{"long line", z[0] + "\n" + z[1] + "<\n" + z[2]},
		{"bad character", z[0] + "\n" + z[1] + "\n" + z[2][:29] + "#"},
		{"td3 shape", strings.Repeat("<", 44) + "\n" + strings.Repeat("<", 44)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := testParser().Parse(tt.text)
			assert.Nil(t, rec)
			assert.ErrorIs(t, err, document.ErrMalformedMRZ)
		})
	}
}

func TestParseUnexpectedFamily(t *testing.T) {
	z := validZone()

	passport := append([]string{"P<" + z[0][2:]}, z[1:]...)
	_, err := testParser().Parse(strings.Join(passport, "\n"))
	assert.ErrorIs(t, err, document.ErrUnexpectedDocumentFamily)

	foreign := append([]string{"ICVEN" + z[0][5:]}, z[1:]...)
	_, err = testParser().Parse(strings.Join(foreign, "\n"))
	assert.ErrorIs(t, err, document.ErrUnexpectedDocumentFamily)
}

// protectedPositions lists every (line, column) covered by a check digit.
func protectedPositions() [][2]int {
	var out [][2]int
	for c := 5; c < 30; c++ {
		out = append(out, [2]int{0, c})
	}
	for _, r := range [][2]int{{0, 7}, {8, 15}, {18, 30}} {
		for c := r[0]; c < r[1]; c++ {
			out = append(out, [2]int{1, c})
		}
	}
	return out
}

func flip(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return '0' + (c-'0'+1)%10
	case c == 'Z':
		return 'Y'
	case c >= 'A' && c <= 'Y':
		return c + 1
	}
	return '1'
}

func TestSingleFlipCostsOnePenalty(t *testing.T) {
	p := testParser()
	for _, pos := range protectedPositions() {
		z := validZone()
		line := []byte(z[pos[0]])
		line[pos[1]] = flip(line[pos[1]])
		z[pos[0]] = string(line)

		rec, err := p.Parse(strings.Join(z, "\n"))
		require.NoError(t, err, "line %d col %d", pos[0]+1, pos[1])
		assert.Equal(t, 100-checkPenalty, rec.Confidence, "line %d col %d", pos[0]+1, pos[1])
	}
}

func TestUnprotectedFlipCostsNothing(t *testing.T) {
	z := validZone()
	line := []byte(z[1])
	line[7] = 'M'
	z[1] = string(line)

	rec, err := testParser().Parse(strings.Join(z, "\n"))
	require.NoError(t, err)
	assert.Equal(t, 100, rec.Confidence)
	assert.Equal(t, document.GenderMale, rec.Gender)
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		checks Checks
		want   int
	}{
		{Checks{true, true, true, true}, 100},
		{Checks{true, true, true, false}, 85},
		{Checks{false, true, true, false}, 85},
		{Checks{false, false, true, false}, 70},
		{Checks{false, false, false, false}, 55},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, confidence(tt.checks), "%+v", tt.checks)
	}
}

func TestSplitNames(t *testing.T) {
	tests := []struct {
		line    string
		surname string
		given   string
	}{
		{"PEREZ<GOMEZ<<ANA<MARIA<<<<<<<<", "PEREZ GOMEZ", "ANA MARIA"},
		{"ERIKSSON<<ANNA<<<<<<<<<<<<<<<<", "ERIKSSON", "ANNA"},
		{"DE<LA<CRUZ<<JOSE<<<<<<<<<<<<<<", "DE LA CRUZ", "JOSE"},
		{"SINGLENAME<<<<<<<<<<<<<<<<<<<<", "SINGLENAME", ""},
		{"ONLY<SURNAME<WORDS", "ONLY SURNAME WORDS", ""},
	}
	for _, tt := range tests {
		s, g := splitNames(tt.line)
		assert.Equal(t, tt.surname, s, tt.line)
		assert.Equal(t, tt.given, g, tt.line)
	}
}

func TestBirthCenturyPivot(t *testing.T) {
	p := testParser()
	assert.Equal(t, 2026, p.birthDate("260101").Year)
	assert.Equal(t, 1927, p.birthDate("270101").Year)
	assert.Equal(t, 2001, p.birthDate("010101").Year)
	assert.Nil(t, p.birthDate("901332"))
	assert.Nil(t, p.birthDate("9A0101"))
	assert.Equal(t, 2099, expiryDate("990101").Year)
}

func TestParseBadDatesAreAbsent(t *testing.T) {
	z := colombianZone("000123456", "901340", "<", "32AB15", "PEREZ<<ANA")
	rec, err := testParser().Parse(strings.Join(z, "\n"))
	require.NoError(t, err)
	assert.Nil(t, rec.BirthDate)
	assert.Nil(t, rec.ExpiryDate)
	assert.Equal(t, document.GenderUnknown, rec.Gender)
	assert.Equal(t, 100, rec.Confidence)
}

func TestFindLines(t *testing.T) {
	z := validZone()
	ocr := strings.Join([]string{
		"REPUBLICA DE COLOMBIA",
		"IDENTIFICACION PERSONAL",
		"CEDULA DE CIUDADANIA 1.020.304.050",
		z[0],
		z[1][:28],
		z[2] + "<<",
		"",
	}, "\n")

	lines := FindLines(ocr)
	require.Len(t, lines, 3)
	assert.Equal(t, z[0], lines[0])
	assert.Equal(t, z[1][:28]+"<<", lines[1])
	assert.Equal(t, z[2], lines[2])

	assert.Empty(t, FindLines("no zone here\njust text"))
}

func TestFindLinesStrayCharacter(t *testing.T) {
	z := validZone()
	names := []byte(z[2])
	names[len(names)-1] = '.'

	lines := FindLines(strings.Join([]string{z[0], z[1], string(names)}, "\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, z[2], lines[2])

	rec, err := testParser().Parse(strings.Join(lines, "\n"))
	require.NoError(t, err)
	assert.Equal(t, 100, rec.Confidence)

	// Two stray characters drop the line.
	names[0] = '.'
	assert.Len(t, FindLines(strings.Join([]string{z[0], z[1], string(names)}, "\n")), 2)
}

func FuzzParse(f *testing.F) {
	f.Add(strings.Join(validZone(), "\n"))
	f.Add("")
	p := testParser()
	f.Fuzz(func(t *testing.T, text string) {
		rec, err := p.Parse(text)
		if err != nil {
			return
		}
		assert.NoError(t, rec.Validate())
		assert.GreaterOrEqual(t, rec.Confidence, 100-3*checkPenalty)
	})
}
