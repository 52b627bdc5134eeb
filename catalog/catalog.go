package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Article is one row of the news TSV, all columns carried verbatim.
type Article struct {
	ID               string
	Category         string
	SubCategory      string
	Title            string
	Abstract         string
	URL              string
	TitleEntities    string
	AbstractEntities string
}

// Catalog maps article ids to their category and display metadata.
type Catalog struct {
	articles   []*Article
	byID       map[string]*Article
	byCategory map[string][]*Article
	categories []string // first-seen order
}

// Load reads a headerless tab-separated news file (News ID, Category,
// SubCategory, Title, Abstract, URL, Title Entities, Abstract Entities).
// Rows may omit trailing columns; rows missing an id or category are an error.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return c, nil
}

// Parse reads catalog rows from r. See Load for the expected format.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	c := &Catalog{
		byID:       make(map[string]*Article),
		byCategory: make(map[string][]*Article),
	}

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line+1, err)
		}
		line++

		a, err := articleFromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if _, dup := c.byID[a.ID]; dup {
			continue
		}

		c.articles = append(c.articles, a)
		c.byID[a.ID] = a
		if _, seen := c.byCategory[a.Category]; !seen {
			c.categories = append(c.categories, a.Category)
		}
		c.byCategory[a.Category] = append(c.byCategory[a.Category], a)
	}

	if len(c.articles) == 0 {
		return nil, fmt.Errorf("no articles")
	}
	return c, nil
}

func articleFromRecord(record []string) (*Article, error) {
	field := func(i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}

	a := &Article{
		ID:               field(0),
		Category:         field(1),
		SubCategory:      field(2),
		Title:            field(3),
		Abstract:         field(4),
		URL:              field(5),
		TitleEntities:    field(6),
		AbstractEntities: field(7),
	}
	if a.ID == "" {
		return nil, fmt.Errorf("missing article id")
	}
	if a.Category == "" {
		return nil, fmt.Errorf("article %s: missing category", a.ID)
	}
	return a, nil
}

// CategoryOf returns the category for an article id, or false if unknown.
func (c *Catalog) CategoryOf(articleID string) (string, bool) {
	a, ok := c.byID[articleID]
	if !ok {
		return "", false
	}
	return a.Category, true
}

// ByID returns the article with the given id, or nil if unknown.
func (c *Catalog) ByID(articleID string) *Article {
	return c.byID[articleID]
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// InCategory returns the articles assigned to a category.
func (c *Catalog) InCategory(category string) []*Article {
	return c.byCategory[category]
}

// CategoryByID returns an id-to-category mapping over the whole catalog.
func (c *Catalog) CategoryByID() map[string]string {
	m := make(map[string]string, len(c.articles))
	for _, a := range c.articles {
		m[a.ID] = a.Category
	}
	return m
}

// Len returns the number of catalog articles.
func (c *Catalog) Len() int {
	return len(c.articles)
}
