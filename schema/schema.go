// Package schema declares how product records are pulled out of a rendered page.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-shopee/models"
)

// Field value kinds.
const (
	TypeText      = "text"
	TypeAttribute = "attribute"
	TypeHTML      = "html"
)

// Field maps one record key to a selector scoped to the base match.
type Field struct {
	Name      string `json:"name" yaml:"name"`
	Selector  string `json:"selector" yaml:"selector"`
	Type      string `json:"type" yaml:"type"`
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
}

// Schema selects every repeating container with BaseSelector and yields one
// record per container.
type Schema struct {
	Name         string  `json:"name" yaml:"name"`
	BaseSelector string  `json:"baseSelector" yaml:"baseSelector"`
	Fields       []Field `json:"fields" yaml:"fields"`
}

// ProductFields are the record keys the product report reads.
var ProductFields = []string{"nome", "preco", "vendedor", "vendidos"}

// Products returns the schema for the Shopee search results grid.
func Products() Schema {
	return Schema{
		Name:         "Shopee Popular Products",
		BaseSelector: "div[data-sqe='item']",
		Fields: []Field{
			{Name: "nome", Selector: "div._1NoI8_._16BAGk", Type: TypeText},
			{Name: "preco", Selector: "span._341bF0", Type: TypeText},
			{Name: "vendedor", Selector: "div._3amru2", Type: TypeText},
			{Name: "vendidos", Selector: "div._18SLBt", Type: TypeText},
		},
	}
}

// Validate checks selectors compile and field names are unique.
func (s Schema) Validate() error {
	if strings.TrimSpace(s.BaseSelector) == "" {
		return errors.New("schema: base selector cannot be empty")
	}
	if _, err := selectors.compile(s.BaseSelector); err != nil {
		return fmt.Errorf("schema: base selector %q: %w", s.BaseSelector, err)
	}
	if len(s.Fields) == 0 {
		return errors.New("schema: at least one field is required")
	}

	seen := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("schema: field %d has no name", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("schema: duplicate field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		if strings.TrimSpace(f.Selector) == "" {
			return fmt.Errorf("schema: field %q has no selector", f.Name)
		}
		if _, err := selectors.compile(f.Selector); err != nil {
			return fmt.Errorf("schema: field %q selector %q: %w", f.Name, f.Selector, err)
		}

		switch f.kind() {
		case TypeText, TypeHTML:
		case TypeAttribute:
			if f.Attribute == "" {
				return fmt.Errorf("schema: attribute field %q must name an attribute", f.Name)
			}
		default:
			return fmt.Errorf("schema: field %q has unknown type %q", f.Name, f.Type)
		}
	}
	return nil
}

// Require reports the first of names that no field of s declares.
func (s Schema) Require(names ...string) error {
	declared := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		declared[f.Name] = struct{}{}
	}
	for _, name := range names {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("schema %q: missing required field %q", s.Name, name)
		}
	}
	return nil
}

// extract applies the schema to a whole document or subtree.
func (s Schema) extract(root *goquery.Selection) []models.Record {
	records := make([]models.Record, 0)
	root.FindMatcher(selectors.matcher(s.BaseSelector)).Each(func(_ int, item *goquery.Selection) {
		records = append(records, s.ExtractOne(item))
	})
	return records
}

// ExtractOne builds a record from a single base match. Fields whose selector
// finds nothing are left out of the record.
func (s Schema) ExtractOne(item *goquery.Selection) models.Record {
	record := make(models.Record, len(s.Fields))
	for _, f := range s.Fields {
		if value, ok := f.value(item); ok {
			record[f.Name] = value
		}
	}
	return record
}

func (f Field) kind() string {
	if f.Type == "" {
		return TypeText
	}
	return f.Type
}

func (f Field) value(item *goquery.Selection) (string, bool) {
	match := item.FindMatcher(selectors.matcher(f.Selector)).First()
	if match.Length() == 0 {
		return "", false
	}

	switch f.kind() {
	case TypeAttribute:
		return match.Attr(f.Attribute)
	case TypeHTML:
		html, err := goquery.OuterHtml(match)
		if err != nil {
			return "", false
		}
		return html, true
	default:
		return strings.TrimSpace(match.Text()), true
	}
}
