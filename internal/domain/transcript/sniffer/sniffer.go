// Package sniffer inspects decoded transcript tables before interpretation and
// reports whether they look like the supported transcript layout.
package sniffer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
)

// ErrUnrecognizedLayout is returned by Require when the tables do not look
// like a transcript of records.
var ErrUnrecognizedLayout = errors.New("transcript layout not recognized")

// Column header keywords of the transcript table (lowercase).
var headerKeywords = []string{
	"modul-id", "typ", "module/fächer", "note", "vm", "ang", "cp", "datum", "sem",
}

const (
	// minHeaderKeywords distinct keywords make a row the header row.
	minHeaderKeywords = 6
	// MinConfidence is the threshold for Recognized.
	MinConfidence = 0.5
)

var matcher = ahocorasick.NewStringMatcher(headerKeywords)

// Layout describes what the sniffer found.
type Layout struct {
	HeaderFound bool     `json:"header_found"`
	HeaderTable int      `json:"header_table"`
	HeaderRow   int      `json:"header_row"`
	Headers     []string `json:"headers,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`

	TotalRows   int         `json:"total_rows"`
	ShapeCounts map[int]int `json:"shape_counts"`
	SectionRows int         `json:"section_rows"` // 9-cell RK rows
	CourseRows  int         `json:"course_rows"`  // 9-cell MK rows
	ThesisBlock bool        `json:"thesis_block"`

	Confidence float64 `json:"confidence"`
}

// Recognized reports whether the confidence reaches MinConfidence.
func (l *Layout) Recognized() bool {
	return l.Confidence >= MinConfidence
}

// Detect scans every row of every table.
func Detect(tables []transcript.Table) *Layout {
	layout := &Layout{
		HeaderTable: -1,
		HeaderRow:   -1,
		ShapeCounts: make(map[int]int),
	}

	for ti, t := range tables {
		for ri, r := range t.Data {
			cells := r.Texts()
			layout.TotalRows++
			layout.ShapeCounts[len(cells)]++

			if !layout.HeaderFound && countKeywords(cells) >= minHeaderKeywords {
				layout.HeaderFound = true
				layout.HeaderTable, layout.HeaderRow = ti, ri
				layout.Headers = cells
				layout.Fingerprint = generateFingerprint(cells)
				continue
			}

			switch len(cells) {
			case 9:
				switch strings.TrimSpace(cells[1]) {
				case transcript.KindSection:
					layout.SectionRows++
				case transcript.KindCourse:
					layout.CourseRows++
				}
			case 8:
				if strings.TrimSpace(cells[1]) == transcript.SectionThesis {
					layout.ThesisBlock = true
				}
			}
		}
	}

	layout.Confidence = confidence(layout)
	return layout
}

// Require runs Detect and fails when the layout is not recognized.
func Require(tables []transcript.Table) (*Layout, error) {
	layout := Detect(tables)
	if !layout.Recognized() {
		return layout, fmt.Errorf("%w (confidence %.2f)", ErrUnrecognizedLayout, layout.Confidence)
	}
	return layout, nil
}

// countKeywords returns how many distinct header keywords occur in the row.
func countKeywords(cells []string) int {
	joined := strings.ToLower(strings.Join(cells, " | "))
	return len(matcher.MatchThreadSafe([]byte(joined)))
}

// confidence weighs the share of 9-cell rows that carry a known kind, the
// presence of the header row and of at least one section marker.
func confidence(l *Layout) float64 {
	full := l.ShapeCounts[9]
	if l.HeaderFound {
		full--
	}
	if full <= 0 {
		return 0
	}

	score := 0.6 * float64(l.SectionRows+l.CourseRows) / float64(full)
	if l.HeaderFound {
		score += 0.3
	}
	if l.SectionRows > 0 {
		score += 0.1
	}
	return score
}

// generateFingerprint hashes the normalized header names so exports of the
// same transcript layout can be recognized.
func generateFingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}
