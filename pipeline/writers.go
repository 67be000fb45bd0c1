package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aluiziolira/go-scrape-shopee/models"
)

// ReportWriter renders the final product list.
type ReportWriter interface {
	Write(products []models.Product) error
}

// NewReportWriter returns the writer for format ("text" or "json").
func NewReportWriter(format string, w io.Writer) (ReportWriter, error) {
	switch format {
	case "", "text":
		return NewTextWriter(w), nil
	case "json":
		return NewJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// TextWriter prints the human-readable report.
type TextWriter struct {
	w io.Writer
}

// NewTextWriter initialises a text report writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// Write prints a heading followed by one block per product.
func (tw *TextWriter) Write(products []models.Product) error {
	buf := bufio.NewWriter(tw.w)

	fmt.Fprint(buf, "Produtos mais populares encontrados:\n\n")
	for _, p := range products {
		fmt.Fprintf(buf, "- %s\n  Preço: %s | Vendedor: %s | Vendidos: %s\n\n",
			p.Nome, p.Preco, p.Vendedor, p.Vendidos)
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush text report: %w", err)
	}
	return nil
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	w io.Writer
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

// Write emits products in JSONL format.
func (jw *JSONWriter) Write(products []models.Product) error {
	buffer := bufio.NewWriter(jw.w)
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)

	for _, p := range products {
		if err := encoder.Encode(p); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}

	if err := buffer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}
