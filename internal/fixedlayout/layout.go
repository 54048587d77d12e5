package fixedlayout

// RecordLength is the exact size of a legacy card barcode record.
const RecordLength = 530

// Identifier is the literal that marks a genuine record.
const Identifier = "PubDSK_1"

// field is a half-open byte range within the record.
type field struct {
	offset int
	width  int
}

func (f field) slice(rec []byte) []byte {
	return rec[f.offset : f.offset+f.width]
}

var (
	fieldAFIS            = field{2, 8}
	fieldIdentifier      = field{24, 8}
	fieldFingerprintCard = field{40, 8}
	fieldNumber          = field{48, 10}
	fieldSurname1        = field{58, 23}
	fieldSurname2        = field{81, 23}
	fieldGiven1          = field{104, 23}
	fieldGiven2          = field{127, 23}
	fieldGender          = field{151, 1}
	fieldBirthDate       = field{152, 8}
	fieldDepartment      = field{160, 2}
	fieldMunicipality    = field{162, 3}
	fieldBloodGroup      = field{166, 2}
	fieldRh              = field{168, 1}
	fieldExpiryDate      = field{170, 8}
)

// nameFields are checked for edge-to-edge truncation.
var nameFields = []field{fieldSurname1, fieldSurname2, fieldGiven1, fieldGiven2}

const (
	baselineConfidence = 95
	unknownPenalty     = 10
	truncationPenalty  = 5
)
