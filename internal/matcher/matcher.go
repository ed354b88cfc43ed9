// Package matcher filters article records against a list of search words.
package matcher

import (
	"regexp"
	"strings"

	"habrscan/internal/models"
)

// tokenPattern matches runs of letters, digits, underscores and hyphens in any
// script. Combining marks split a token.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_-]+`)

// Options tunes how article fields enter the token set.
type Options struct {
	// CaseSensitiveAuthor inserts the author verbatim, so only an exact-case
	// search word matches it. When false the author is lower-cased like
	// every other token.
	CaseSensitiveAuthor bool
}

// Matcher selects articles whose token set intersects the search words.
type Matcher struct {
	opts Options
}

// New creates a matcher.
func New(opts Options) *Matcher {
	return &Matcher{opts: opts}
}

// Match returns the summaries of matching articles in input order.
// Search words are used as given; an empty list matches nothing.
func (m *Matcher) Match(words []string, articles []models.ArticleRecord) []models.MatchResult {
	results := []models.MatchResult{}

	if len(words) == 0 {
		return results
	}

	search := make(map[string]struct{}, len(words))
	for _, w := range words {
		search[w] = struct{}{}
	}

	for _, article := range articles {
		if m.intersects(m.TokenSet(article), search) {
			results = append(results, article.Summary())
		}
	}

	return results
}

// TokenSet builds the combined set of lower-cased title, keyword and
// abstract tokens plus the author.
func (m *Matcher) TokenSet(article models.ArticleRecord) map[string]struct{} {
	set := make(map[string]struct{})

	for _, text := range []string{article.Title, strings.Join(article.Keywords, " "), article.Abstract} {
		for _, tok := range Tokenize(text) {
			set[tok] = struct{}{}
		}
	}

	author := article.Author
	if !m.opts.CaseSensitiveAuthor {
		author = strings.ToLower(author)
	}

	set[author] = struct{}{}

	return set
}

func (m *Matcher) intersects(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}

	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}

	return false
}

// Tokenize splits text into lower-cased word tokens.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(text, -1)

	tokens := make([]string, len(raw))
	for i, tok := range raw {
		tokens[i] = strings.ToLower(tok)
	}

	return tokens
}
