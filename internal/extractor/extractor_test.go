package extractor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// newSkipping returns an extractor for the Habr layout that skips broken snippets.
func newSkipping() *Extractor {
	return New(DefaultSchema(), PolicySkip, nil)
}

type snippetFixture struct {
	title    string
	author   string
	href     string
	time     string
	abstract string
	hubs     []string
	// omit names a part of the snippet markup to leave out.
	omit string
}

func (f snippetFixture) html() string {
	var b strings.Builder

	b.WriteString(`<article class="tm-articles-list__item"><div class="tm-article-snippet">`)
	b.WriteString(`<div class="tm-article-snippet__meta-container"><div class="tm-article-snippet__meta">`)
	b.WriteString(`<span class="tm-user-info">`)

	switch f.omit {
	case "author":
	case "author-attr":
		b.WriteString(`<a href="/ru/users/x/" class="tm-user-info__userpic">pic</a>`)
	default:
		fmt.Fprintf(&b, `<a href="/ru/users/%s/" title="%s" class="tm-user-info__userpic">pic</a>`, f.author, f.author)
	}

	fmt.Fprintf(&b, `<span class="tm-user-info__user"><a class="tm-user-info__username">%s</a></span>`, f.author)

	if f.omit != "href" {
		fmt.Fprintf(&b, `<span class="tm-article-datetime-published"><a href="%s" class="tm-article-datetime-published">`, f.href)

		if f.omit != "time" {
			fmt.Fprintf(&b, `<time datetime="2024-01-01T10:00:00.000Z" title="%s">today</time>`, f.time)
		}

		b.WriteString(`</a></span>`)
	}

	b.WriteString(`</span></div></div>`)

	if f.omit != "title" {
		fmt.Fprintf(&b, `<h2 class="tm-title"><a href="%s" class="tm-title__link"><span>%s</span></a></h2>`, f.href, f.title)
	}

	b.WriteString(`<div class="tm-publication-hubs__container"><div class="tm-publication-hubs">`)

	for _, hub := range f.hubs {
		fmt.Fprintf(&b, `<span class="tm-publication-hub__link-container"><a href="/ru/hubs/h/"><span>%s</span></a></span>`, hub)
	}

	b.WriteString(`</div></div>`)

	if f.omit != "abstract" {
		fmt.Fprintf(&b, `<div class="tm-article-body tm-article-snippet__lead"><div class="tm-article-body__wrap"><div xmlns="http://www.w3.org/1999/xhtml"><div class="article-formatted-body article-formatted-body_version-2"><p>%s</p></div></div></div></div>`, f.abstract)
	}

	b.WriteString(`</div></article>`)

	return b.String()
}

func page(snippets ...snippetFixture) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html><html><head><title>Статьи / Хабр</title></head><body><div class="tm-articles-list">`)

	for _, s := range snippets {
		b.WriteString(s.html())
	}

	b.WriteString(`</div></body></html>`)

	return b.String()
}

var (
	rustSnippet = snippetFixture{
		title:    "Rust is fast",
		author:   "ivanov",
		href:     "/ru/articles/100001/",
		time:     "2024-01-01, 13:00",
		abstract: "A well-known systems language.",
		hubs:     []string{"Rust", "*", "Systems"},
	}
	cookingSnippet = snippetFixture{
		title:    "Cooking tips",
		author:   "Petrov",
		href:     "/ru/articles/100002/",
		time:     "2024-01-02, 09:30",
		abstract: "Soup and bread.",
		hubs:     []string{"Food"},
	}
)

func TestExtract_TwoSnippets(t *testing.T) {
	records, err := newSkipping().Extract(page(rustSnippet, cookingSnippet))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Title != "Rust is fast" {
		t.Errorf("Expected title 'Rust is fast', got %q", first.Title)
	}

	if first.Author != "ivanov" {
		t.Errorf("Expected author 'ivanov', got %q", first.Author)
	}

	if first.Href != "https://habr.com/ru/articles/100001/" {
		t.Errorf("Expected absolute href, got %q", first.Href)
	}

	if first.Time != "2024-01-01, 13:00" {
		t.Errorf("Expected time from title attribute, got %q", first.Time)
	}

	if !reflect.DeepEqual(first.Keywords, []string{"Rust", "Systems"}) {
		t.Errorf("Expected keywords [Rust Systems], got %v", first.Keywords)
	}

	if first.Abstract != "A well-known systems language." {
		t.Errorf("Unexpected abstract %q", first.Abstract)
	}

	if records[1].Title != "Cooking tips" {
		t.Errorf("Expected second record 'Cooking tips', got %q", records[1].Title)
	}
}

func TestExtract_PlaceholderNeverKept(t *testing.T) {
	s := rustSnippet
	s.hubs = []string{"*", "Go", "*", "Go", "*"}

	records, err := newSkipping().Extract(page(s))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// order and duplicates are preserved
	if !reflect.DeepEqual(records[0].Keywords, []string{"Go", "Go"}) {
		t.Errorf("Expected [Go Go], got %v", records[0].Keywords)
	}
}

func TestExtract_NoHubs(t *testing.T) {
	s := cookingSnippet
	s.hubs = nil

	records, err := newSkipping().Extract(page(s))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if records[0].Keywords == nil || len(records[0].Keywords) != 0 {
		t.Errorf("Expected empty non-nil keywords, got %#v", records[0].Keywords)
	}
}

func TestExtract_EmptyPage(t *testing.T) {
	records, err := newSkipping().Extract("<html><body><p>nothing here</p></body></html>")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestExtract_MissingFieldSkip(t *testing.T) {
	tests := []struct {
		omit  string
		field string
	}{
		{"title", FieldTitle},
		{"author", FieldAuthor},
		{"author-attr", FieldAuthor},
		{"href", FieldHref},
		{"time", FieldTime},
		{"abstract", FieldAbstract},
	}

	for _, tt := range tests {
		t.Run(tt.omit, func(t *testing.T) {
			broken := rustSnippet
			broken.omit = tt.omit

			report, err := newSkipping().ExtractReport(strings.NewReader(page(broken, cookingSnippet)))
			if err != nil {
				t.Fatalf("ExtractReport failed: %v", err)
			}

			if report.Snippets != 2 {
				t.Errorf("Expected 2 snippets, got %d", report.Snippets)
			}

			if len(report.Records) != 1 || report.Records[0].Title != "Cooking tips" {
				t.Fatalf("Expected only the cooking record, got %+v", report.Records)
			}

			if len(report.Skipped) != 1 {
				t.Fatalf("Expected 1 skipped snippet, got %d", len(report.Skipped))
			}

			if report.Skipped[0].Field != tt.field || report.Skipped[0].Index != 0 {
				t.Errorf("Expected field %s at index 0, got %+v", tt.field, report.Skipped[0])
			}
		})
	}
}

func TestExtract_MissingFieldFail(t *testing.T) {
	broken := cookingSnippet
	broken.omit = "abstract"

	ex := New(DefaultSchema(), PolicyFail, nil)

	_, err := ex.Extract(page(rustSnippet, broken))
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("Expected ErrMissingField, got %v", err)
	}

	var mfe *MissingFieldError
	if !errors.As(err, &mfe) {
		t.Fatalf("Expected *MissingFieldError, got %T", err)
	}

	if mfe.Field != FieldAbstract || mfe.Index != 1 {
		t.Errorf("Expected abstract at index 1, got %+v", mfe)
	}
}

func TestExtract_EmptyValuesAreNotMissing(t *testing.T) {
	s := rustSnippet
	s.abstract = ""
	s.title = ""

	records, err := New(DefaultSchema(), PolicyFail, nil).Extract(page(s))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if records[0].Title != "" || records[0].Abstract != "" {
		t.Errorf("Expected empty title and abstract, got %+v", records[0])
	}
}

func TestExtract_Deterministic(t *testing.T) {
	markup := page(rustSnippet, cookingSnippet, rustSnippet)
	ex := newSkipping()

	first, err := ex.Extract(markup)
	if err != nil {
		t.Fatal(err)
	}

	second, err := ex.Extract(markup)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Extraction is not deterministic:\n%+v\n%+v", first, second)
	}

	// no deduplication across identical snippets
	if len(first) != 3 {
		t.Errorf("Expected 3 records, got %d", len(first))
	}
}

func TestExtract_CustomOrigin(t *testing.T) {
	ex := New(DefaultSchema().WithOrigin("https://mirror.example/"), PolicySkip, nil)

	records, err := ex.Extract(page(rustSnippet))
	if err != nil {
		t.Fatal(err)
	}

	if records[0].Href != "https://mirror.example/ru/articles/100001/" {
		t.Errorf("Unexpected href %q", records[0].Href)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("FAIL"); err != nil || p != PolicyFail {
		t.Errorf("Expected PolicyFail, got %q, %v", p, err)
	}

	if _, err := ParsePolicy("retry"); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("Expected ErrUnknownPolicy, got %v", err)
	}
}
