package pipeline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aluiziolira/go-scrape-shopee/models"
)

func TestTextWriterWrite(t *testing.T) {
	var buf bytes.Buffer
	products := []models.Product{
		{Nome: "Fone", Preco: "R$ 29,90", Vendedor: "São Paulo", Vendidos: "10mil vendidos"},
		{Nome: "Capinha", Preco: "R$ 5,00"},
	}

	if err := NewTextWriter(&buf).Write(products); err != nil {
		t.Fatalf("write text: %v", err)
	}

	want := "Produtos mais populares encontrados:\n\n" +
		"- Fone\n  Preço: R$ 29,90 | Vendedor: São Paulo | Vendidos: 10mil vendidos\n\n" +
		"- Capinha\n  Preço: R$ 5,00 | Vendedor:  | Vendidos: \n\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestJSONWriterWrite(t *testing.T) {
	var buf bytes.Buffer
	products := []models.Product{
		{Nome: "Fone <sem fio>", Preco: "R$ 29,90"},
		{Nome: "Capinha"},
	}

	if err := NewJSONWriter(&buf).Write(products); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if strings.Contains(buf.String(), `\u003c`) {
		t.Fatalf("html should not be escaped: %s", buf.String())
	}

	scanner := bufio.NewScanner(&buf)
	count := 0
	for scanner.Scan() {
		var decoded models.Product
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		if decoded != products[count] {
			t.Fatalf("line %d = %+v, want %+v", count, decoded, products[count])
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if count != 2 {
		t.Fatalf("json lines=%d, want 2", count)
	}
}

func TestNewReportWriter(t *testing.T) {
	var buf bytes.Buffer
	if w, err := NewReportWriter("text", &buf); err != nil {
		t.Fatalf("text: %v", err)
	} else if _, ok := w.(*TextWriter); !ok {
		t.Fatalf("text format returned %T", w)
	}
	if w, err := NewReportWriter("json", &buf); err != nil {
		t.Fatalf("json: %v", err)
	} else if _, ok := w.(*JSONWriter); !ok {
		t.Fatalf("json format returned %T", w)
	}
	if _, err := NewReportWriter("csv", &buf); err == nil {
		t.Fatalf("expected error for csv")
	}
}
