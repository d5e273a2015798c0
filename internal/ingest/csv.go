package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxFeedBytes is the largest feed body accepted. Larger bodies are rejected
// rather than cut.
const maxFeedBytes = 16 << 20

var utf8BOM = []byte("\xef\xbb\xbf")

// ParseCSV reads header-keyed rows from r. The first record is the header.
// Blank lines are skipped, short rows leave the missing keys absent and cells
// beyond the header are ignored.
func ParseCSV(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := readRecord(cr)
	if err == io.EOF {
		return []Row{}, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	rows := []Row{}
	for {
		record, err := readRecord(cr)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i >= len(record) {
				break
			}
			if name == "" {
				continue
			}
			row[name] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// readRecord returns the next non-blank record.
func readRecord(cr *csv.Reader) ([]string, error) {
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
			}
			return nil, &ParseError{Err: err}
		}
		if isBlankRecord(record) {
			continue
		}
		return record, nil
	}
}

// isBlankRecord matches a line holding nothing but whitespace.
func isBlankRecord(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}

// FetchCSV fetches url with f and parses the body as a header-keyed CSV feed.
// Failures are reported as *NetworkError, *TimeoutError or *ParseError.
func FetchCSV(ctx context.Context, f Fetcher, url string) ([]Row, error) {
	if strings.TrimSpace(url) == "" {
		return nil, &NetworkError{URL: url, Err: errors.New("feed url is not configured")}
	}

	doc, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, classifyFetchError(url, err)
	}
	defer doc.Body.Close()

	body, err := io.ReadAll(io.LimitReader(doc.Body, maxFeedBytes+1))
	if err != nil {
		return nil, classifyFetchError(url, fmt.Errorf("failed to read body: %w", err))
	}
	if len(body) > maxFeedBytes {
		return nil, &ParseError{Err: fmt.Errorf("feed exceeds %d bytes", maxFeedBytes)}
	}

	if looksLikeHTML(doc.ContentType, body) {
		return nil, &ParseError{Err: fmt.Errorf("feed returned an HTML page (%q) instead of CSV", htmlTitle(body))}
	}

	return ParseCSV(bytes.NewReader(body))
}

// looksLikeHTML catches the sign-in or error page a spreadsheet host serves
// when a sheet is not published.
func looksLikeHTML(contentType string, body []byte) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "text/html" {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(bytes.TrimPrefix(body, utf8BOM)))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return cleanText(doc.Find("title").First().Text())
}
