package extractor

// Field names used in MissingFieldError and logs.
const (
	FieldTitle    = "title"
	FieldAuthor   = "author"
	FieldHref     = "href"
	FieldTime     = "time"
	FieldKeywords = "keywords"
	FieldAbstract = "abstract"
)

// KeywordPlaceholder is the hub text the site uses for "no more hubs".
const KeywordPlaceholder = "*"

const metaChain = "div.tm-article-snippet__meta-container > div.tm-article-snippet__meta"

// FieldSelector locates one field inside a snippet. When Attr is empty the
// node text is used, otherwise the named attribute.
type FieldSelector struct {
	Name     string
	Selector string
	Attr     string
}

// Schema describes the listing page layout.
type Schema struct {
	Container string
	Origin    string
	Title     FieldSelector
	Author    FieldSelector
	Href      FieldSelector
	Time      FieldSelector
	Keywords  FieldSelector
	Abstract  FieldSelector
}

// DefaultSchema returns the Habr listing layout.
func DefaultSchema() Schema {
	return Schema{
		Container: "div.tm-article-snippet",
		Origin:    "https://habr.com",
		Title: FieldSelector{
			Name:     FieldTitle,
			Selector: "h2 > a > span",
		},
		Author: FieldSelector{
			Name:     FieldAuthor,
			Selector: metaChain + " > span > a",
			Attr:     "title",
		},
		Href: FieldSelector{
			Name:     FieldHref,
			Selector: metaChain + " > span > span > a.tm-article-datetime-published",
			Attr:     "href",
		},
		Time: FieldSelector{
			Name:     FieldTime,
			Selector: metaChain + " > span > span > a.tm-article-datetime-published > time",
			Attr:     "title",
		},
		Keywords: FieldSelector{
			Name:     FieldKeywords,
			Selector: "div.tm-publication-hubs__container > div > span > a > span",
		},
		Abstract: FieldSelector{
			Name:     FieldAbstract,
			Selector: "div.tm-article-body > div > div > div.article-formatted-body",
		},
	}
}

// WithOrigin returns a copy of the schema with a different link origin.
func (s Schema) WithOrigin(origin string) Schema {
	s.Origin = origin
	return s
}
