// Package models defines data structures for the crawler, extractor and matcher.
package models

// ArticleRecord represents one article snippet found on the listing page.
type ArticleRecord struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Href     string   `json:"href"`
	Time     string   `json:"time"`
	Abstract string   `json:"abstract"`
	Keywords []string `json:"keywords"`
}

// MatchResult is the part of an ArticleRecord reported for a match.
type MatchResult struct {
	Title string `json:"title"`
	Time  string `json:"time"`
	Href  string `json:"href"`
}

// Summary projects the record down to the fields reported for a match.
func (a ArticleRecord) Summary() MatchResult {
	return MatchResult{
		Title: a.Title,
		Time:  a.Time,
		Href:  a.Href,
	}
}
