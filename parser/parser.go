// Package parser decodes extracted payloads into products.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aluiziolira/go-scrape-shopee/models"
)

// DecodeProducts parses the JSON array produced by the extraction step.
// Missing keys and null values decode as empty strings.
func DecodeProducts(payload string) ([]models.Product, error) {
	trimmed := bytes.TrimSpace([]byte(payload))
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode products: empty payload")
	}

	var products []models.Product
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if products == nil {
		// a literal null is not a list of records
		return nil, fmt.Errorf("decode products: payload is not a JSON array")
	}
	return products, nil
}

// CleanField trims surrounding whitespace. Applying it twice is a no-op.
func CleanField(value string) string {
	return strings.TrimSpace(value)
}

// CleanProduct returns a copy with every field trimmed.
func CleanProduct(p models.Product) models.Product {
	return models.Product{
		Nome:     CleanField(p.Nome),
		Preco:    CleanField(p.Preco),
		Vendedor: CleanField(p.Vendedor),
		Vendidos: CleanField(p.Vendidos),
	}
}
