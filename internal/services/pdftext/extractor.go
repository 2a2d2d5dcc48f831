// Package pdftext turns an uploaded PDF into visual text lines.
//
// We use the ledongthuc/pdf library for text extraction. It's a pure Go
// implementation — no CGO or external dependencies required — which keeps
// deployment to a single binary.
//
// A PDF has no concept of a "line": it stores positioned text fragments.
// This package reads each fragment with its page coordinates, groups
// fragments that share a Y coordinate, and reads groups top-to-bottom to
// reconstruct the lines a human sees on the page.
package pdftext

import (
	"bytes"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Fragment is one positioned run of text on a page. Coordinates are in
// PDF space: the origin is the bottom-left corner, so a LARGER Y means
// HIGHER on the page.
type Fragment struct {
	X    float64
	Y    float64
	Text string
}

// Decode parses the PDF and returns its text fragments page by page.
//
// Go Pattern: We accept a []byte instead of a filename because the data
// comes from an HTTP upload (in memory), not a file on disk. The pdf
// library needs io.ReaderAt for random access, which bytes.Reader gives
// us for free.
func Decode(data []byte) (pages [][]Fragment, err error) {
	// The underlying parser panics on some malformed files instead of
	// returning an error. Recover so a corrupt upload fails its own job
	// rather than taking down the process.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	pageCount := reader.NumPage()
	pages = make([][]Fragment, 0, pageCount)

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content := page.Content()
		frags := make([]Fragment, 0, len(content.Text))
		for _, t := range content.Text {
			frags = append(frags, Fragment{
				X:    t.X,
				Y:    t.Y,
				Text: decodeFragmentText(t.S),
			})
		}
		pages = append(pages, frags)
	}

	return pages, nil
}

// decodeFragmentText percent-decodes a fragment. Some producers emit
// URL-escaped text (%20 and friends); when the text isn't valid percent
// encoding we keep the raw bytes rather than lose the fragment.
func decodeFragmentText(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		log.Printf("⚠️ Could not percent-decode fragment %q, keeping raw text: %v", s, err)
		return s
	}
	return decoded
}

// AssembleLines reconstructs visual lines from positioned fragments.
//
// Within a page, fragments sharing an exact Y coordinate form one line,
// ordered left to right by X. Lines are emitted top of page first
// (descending Y — PDF Y grows upward). Pages keep their document order.
// Fragment texts are joined with single spaces, runs of whitespace are
// collapsed, and lines that end up empty are dropped.
//
// Exact Y equality is a deliberate simplification: the billing reports
// this service ingests are machine-generated, so cells of one row share
// a baseline to the decimal. Scanned or hand-tweaked PDFs would need a
// tolerance here.
func AssembleLines(pages [][]Fragment) []string {
	var lines []string

	for _, frags := range pages {
		buckets := make(map[float64][]Fragment)
		for _, f := range frags {
			buckets[f.Y] = append(buckets[f.Y], f)
		}

		ys := make([]float64, 0, len(buckets))
		for y := range buckets {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(ys)))

		for _, y := range ys {
			row := buckets[y]
			sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

			parts := make([]string, 0, len(row))
			for _, f := range row {
				parts = append(parts, f.Text)
			}
			line := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
			if line == "" {
				continue
			}
			lines = append(lines, line)
		}
	}

	return lines
}

// ExtractLines is the one-call form: decode the PDF and assemble its
// visual lines.
func ExtractLines(data []byte) ([]string, error) {
	pages, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return AssembleLines(pages), nil
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
