package forensics

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/ironsheep/docverify/internal/document"
)

const (
	metadataEdited    = 10
	metadataCamera    = 90
	metadataTimestamp = 5
	metadataNoCamera  = 55
	metadataAbsent    = 40
)

// editorMarkers are lower-case substrings of software names and comments
// that indicate an edited image or a screen capture.
var editorMarkers = []string{
	"screenshot", "screen shot", "captura de pantalla", "snipping", "greenshot",
	"sharex", "skitch", "flameshot", "lightshot",
	"photoshop", "lightroom", "gimp", "pixelmator", "affinity", "paint.net",
	"snapseed", "canva", "picsart", "facetune", "photopea",
}

// captureMetadata is the normalised metadata of a frame.
type captureMetadata struct {
	make, model, software string
	timestamp             bool
	comments              []string
	present               bool
}

func metadataCheck(_ context.Context, in Input) document.Check {
	return scoreMetadata(readCaptureMetadata(in.Primary.Data))
}

func scoreMetadata(m captureMetadata) document.Check {
	if marker, found := m.editorMarker(); found {
		return document.Check{
			Score:  metadataEdited,
			Detail: fmt.Sprintf("metadata indicates editing or screen capture (%s)", marker),
		}
	}
	if m.make != "" || m.model != "" {
		score := metadataCamera
		detail := fmt.Sprintf("camera metadata present: %s", strings.TrimSpace(m.make+" "+m.model))
		if m.timestamp {
			score += metadataTimestamp
			detail += ", with capture time"
		}
		return document.Check{Passed: true, Score: score, Detail: detail}
	}
	if m.present {
		return document.Check{
			Passed: true,
			Score:  metadataNoCamera,
			Detail: "metadata present without camera origin",
		}
	}
	return document.Check{
		Score:  metadataAbsent,
		Detail: "no capture metadata; it may have been stripped",
	}
}

func (m captureMetadata) editorMarker() (string, bool) {
	candidates := append([]string{m.software}, m.comments...)
	for _, s := range candidates {
		lower := strings.ToLower(s)
		for _, marker := range editorMarkers {
			if strings.Contains(lower, marker) {
				return marker, true
			}
		}
	}
	return "", false
}

func readCaptureMetadata(data []byte) captureMetadata {
	var m captureMetadata
	var exifData []byte

	if png, ok := readPNGMetadata(data); ok {
		exifData = png.exif
		keys := make([]string, 0, len(png.text))
		for k := range png.text {
			keys = append(keys, k)
		}
		// Keyword order keeps the detail stable across runs.
		sort.Strings(keys)
		for _, k := range keys {
			v := png.text[k]
			m.present = true
			switch strings.ToLower(k) {
			case "software":
				if m.software == "" {
					m.software = v
				}
			case "comment", "description", "title", "source", "xml:com.adobe.xmp":
				m.comments = append(m.comments, v)
			}
		}
	} else {
		exifData = data
	}
	if len(exifData) > 0 {
		readExif(exifData, &m)
	}
	return m
}

func readExif(data []byte, m *captureMetadata) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		log.WithError(err).Debug("no readable exif")
		return
	}
	m.present = true

	str := func(name exif.FieldName) string {
		tag, err := x.Get(name)
		if err != nil {
			return ""
		}
		s, err := tag.StringVal()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(strings.TrimRight(s, "\x00"))
	}
	m.make = str(exif.Make)
	m.model = str(exif.Model)
	if s := str(exif.Software); s != "" {
		m.software = s
	}
	if d := str(exif.ImageDescription); d != "" {
		m.comments = append(m.comments, d)
	}
	if tag, err := x.Get(exif.UserComment); err == nil {
		m.comments = append(m.comments, string(bytes.Trim(tag.Val, "\x00 ")))
	}
	if _, err := x.DateTime(); err == nil {
		m.timestamp = true
	}
}
