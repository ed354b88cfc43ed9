// Package extractor turns a listing page into article records using a named
// selector schema.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"habrscan/internal/logger"
	"habrscan/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// Extraction errors.
var (
	ErrMissingField  = errors.New("required field not found")
	ErrParseMarkup   = errors.New("failed to parse markup")
	ErrUnknownPolicy = errors.New("unknown missing field policy")
)

// MissingFieldPolicy controls what happens to a snippet with a missing field.
type MissingFieldPolicy string

// Supported policies.
const (
	// PolicySkip drops the offending snippet and keeps going.
	PolicySkip MissingFieldPolicy = "skip"
	// PolicyFail aborts extraction on the first missing field.
	PolicyFail MissingFieldPolicy = "fail"
)

// ParsePolicy converts a configuration value into a policy.
func ParsePolicy(s string) (MissingFieldPolicy, error) {
	switch p := MissingFieldPolicy(strings.ToLower(s)); p {
	case PolicySkip, PolicyFail:
		return p, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// MissingFieldError reports a selector that matched nothing inside a snippet.
type MissingFieldError struct {
	Field    string
	Selector string
	Attr     string
	Index    int
}

func (e *MissingFieldError) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("snippet %d: field %q: attribute %q of %q not found", e.Index, e.Field, e.Attr, e.Selector)
	}

	return fmt.Sprintf("snippet %d: field %q: %q not found", e.Index, e.Field, e.Selector)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// Report is the outcome of one extraction pass.
type Report struct {
	Records  []models.ArticleRecord
	Skipped  []*MissingFieldError
	Snippets int
}

// Extractor applies a Schema to listing markup.
type Extractor struct {
	log    *logger.Logger
	schema Schema
	policy MissingFieldPolicy
}

// New creates an extractor. A nil logger discards skip warnings.
func New(schema Schema, policy MissingFieldPolicy, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Discard()
	}

	return &Extractor{
		log:    log,
		schema: schema,
		policy: policy,
	}
}

// Extract parses markup and returns one record per well-formed snippet.
func (e *Extractor) Extract(markup string) ([]models.ArticleRecord, error) {
	report, err := e.ExtractReport(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	return report.Records, nil
}

// ExtractReport parses markup from r and reports kept and skipped snippets.
func (e *Extractor) ExtractReport(r io.Reader) (*Report, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseMarkup, err)
	}

	return e.ExtractDocument(doc)
}

// ExtractDocument walks every snippet of an already parsed document.
func (e *Extractor) ExtractDocument(doc *goquery.Document) (*Report, error) {
	report := &Report{Records: []models.ArticleRecord{}}

	var failure error

	doc.Find(e.schema.Container).EachWithBreak(func(i int, snippet *goquery.Selection) bool {
		report.Snippets++

		record, err := e.extractSnippet(i, snippet)
		if err == nil {
			report.Records = append(report.Records, record)

			return true
		}

		var mfe *MissingFieldError
		if e.policy == PolicyFail || !errors.As(err, &mfe) {
			failure = err

			return false
		}

		e.log.Warn("skipping snippet with missing field",
			"index", mfe.Index, "field", mfe.Field, "selector", mfe.Selector)
		report.Skipped = append(report.Skipped, mfe)

		return true
	})

	if failure != nil {
		return nil, failure
	}

	e.log.Debug("extraction finished",
		"snippets", report.Snippets, "records", len(report.Records), "skipped", len(report.Skipped))

	return report, nil
}

func (e *Extractor) extractSnippet(index int, snippet *goquery.Selection) (models.ArticleRecord, error) {
	var record models.ArticleRecord

	var err error

	if record.Title, err = single(index, snippet, e.schema.Title); err != nil {
		return record, err
	}

	if record.Author, err = single(index, snippet, e.schema.Author); err != nil {
		return record, err
	}

	href, err := single(index, snippet, e.schema.Href)
	if err != nil {
		return record, err
	}

	record.Href = absolute(e.schema.Origin, href)

	if record.Time, err = single(index, snippet, e.schema.Time); err != nil {
		return record, err
	}

	record.Keywords = keywords(snippet, e.schema.Keywords)

	if record.Abstract, err = single(index, snippet, e.schema.Abstract); err != nil {
		return record, err
	}

	return record, nil
}

// single returns the text or attribute of the first node matching fs.
func single(index int, snippet *goquery.Selection, fs FieldSelector) (string, error) {
	node := snippet.Find(fs.Selector).First()
	if node.Length() == 0 {
		return "", &MissingFieldError{Field: fs.Name, Selector: fs.Selector, Index: index}
	}

	if fs.Attr == "" {
		return node.Text(), nil
	}

	value, ok := node.Attr(fs.Attr)
	if !ok {
		return "", &MissingFieldError{Field: fs.Name, Selector: fs.Selector, Attr: fs.Attr, Index: index}
	}

	return value, nil
}

// keywords collects hub names in page order, without placeholders.
func keywords(snippet *goquery.Selection, fs FieldSelector) []string {
	words := []string{}

	snippet.Find(fs.Selector).Each(func(_ int, node *goquery.Selection) {
		if text := node.Text(); text != KeywordPlaceholder {
			words = append(words, text)
		}
	})

	return words
}

func absolute(origin, path string) string {
	if strings.HasPrefix(path, "/") {
		origin = strings.TrimRight(origin, "/")
	}

	return origin + path
}
