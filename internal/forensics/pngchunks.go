package forensics

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/text/encoding/charmap"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// pngMetadata is the metadata found in PNG ancillary chunks.
type pngMetadata struct {
	// exif is the raw TIFF stream of an eXIf chunk.
	exif []byte
	// text maps tEXt and iTXt keywords to their values.
	text map[string]string
}

// readPNGMetadata walks the chunk list of a PNG stream. Truncated or
// corrupt chunk lists end the walk without error; whatever was read is
// returned. ok is false when data is not a PNG.
func readPNGMetadata(data []byte) (meta pngMetadata, ok bool) {
	if !bytes.HasPrefix(data, pngSignature) {
		return meta, false
	}
	meta.text = make(map[string]string)

	p := data[len(pngSignature):]
	for len(p) >= 12 {
		length := binary.BigEndian.Uint32(p[0:4])
		kind := string(p[4:8])
		if uint64(length)+12 > uint64(len(p)) {
			break
		}
		body := p[8 : 8+length]

		switch kind {
		case "eXIf":
			meta.exif = body
		case "tEXt":
			if k, v, found := bytes.Cut(body, []byte{0}); found {
				meta.text[string(k)] = latin1String(v)
			}
		case "iTXt":
			if k, v, found := parseITXt(body); found {
				meta.text[k] = v
			}
		case "IEND":
			return meta, true
		}
		p = p[12+length:]
	}
	return meta, true
}

// parseITXt returns the keyword and text of an uncompressed iTXt chunk.
// Compressed chunks are skipped.
func parseITXt(body []byte) (string, string, bool) {
	k, rest, found := bytes.Cut(body, []byte{0})
	if !found || len(rest) < 2 || rest[0] != 0 {
		return "", "", false
	}
	rest = rest[2:]
	// language tag, then translated keyword
	for i := 0; i < 2; i++ {
		_, rest, found = bytes.Cut(rest, []byte{0})
		if !found {
			return "", "", false
		}
	}
	return string(k), string(rest), true
}

// latin1String decodes tEXt values, which PNG defines as ISO 8859-1.
func latin1String(b []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
