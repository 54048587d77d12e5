// Package fixedlayout decodes the 530-byte identity record carried in the
// 2-D barcode on the back of legacy citizen cards.
//
// The record is ISO-8859-1 text at fixed offsets. Fields are padded with
// NUL or space bytes; see layout.go for the offset table. A record is
// accepted only when its length is exact and the format identifier sits
// at its fixed position, which is how a barcode engine that mis-read
// noise as data is told apart from a real record.
//
// Illegible enumerated fields (gender, blood type) decode to their Unknown
// variant and lower the record's confidence instead of failing it.
package fixedlayout
