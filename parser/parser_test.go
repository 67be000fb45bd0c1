package parser

import (
	"testing"

	"github.com/aluiziolira/go-scrape-shopee/models"
)

func TestDecodeProducts(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []models.Product
		wantErr bool
	}{
		{
			name:    "empty array",
			payload: "[]",
			want:    []models.Product{},
		},
		{
			name:    "full record",
			payload: `[{"nome":"Widget","preco":"R$ 10","vendedor":"Loja","vendidos":"1,2mil vendidos"}]`,
			want:    []models.Product{{Nome: "Widget", Preco: "R$ 10", Vendedor: "Loja", Vendidos: "1,2mil vendidos"}},
		},
		{
			name:    "missing and null fields",
			payload: `[{"nome":"Widget","vendedor":null}]`,
			want:    []models.Product{{Nome: "Widget"}},
		},
		{
			name:    "unknown keys ignored",
			payload: `[{"nome":"A","avaliacoes":"4.9"}]`,
			want:    []models.Product{{Nome: "A"}},
		},
		{
			name:    "malformed json",
			payload: `[{"nome":`,
			wantErr: true,
		},
		{
			name:    "object instead of array",
			payload: `{"nome":"A"}`,
			wantErr: true,
		},
		{
			name:    "numeric field",
			payload: `[{"nome":"A","vendidos":12}]`,
			wantErr: true,
		},
		{
			name:    "null payload",
			payload: "null",
			wantErr: true,
		},
		{
			name:    "empty payload",
			payload: "  ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeProducts(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeProducts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("products = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("product %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecodeProductsKeepsOrder(t *testing.T) {
	got, err := DecodeProducts(`[{"nome":"c"},{"nome":"a"},{"nome":"b"},{"nome":"a"}]`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"c", "a", "b", "a"}
	for i, name := range want {
		if got[i].Nome != name {
			t.Fatalf("product %d = %q, want %q", i, got[i].Nome, name)
		}
	}
}

func TestCleanField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "surrounding spaces", input: "  Widget  ", expected: "Widget"},
		{name: "tabs and newlines", input: "\n\tR$ 10\n", expected: "R$ 10"},
		{name: "inner spaces kept", input: " 1.2k  vendidos ", expected: "1.2k  vendidos"},
		{name: "already clean", input: "Loja", expected: "Loja"},
		{name: "empty string", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := CleanField(tt.input)
			if once != tt.expected {
				t.Errorf("CleanField(%q) = %q, want %q", tt.input, once, tt.expected)
			}
			if twice := CleanField(once); twice != once {
				t.Errorf("CleanField not idempotent: %q then %q", once, twice)
			}
		})
	}
}

func TestCleanProduct(t *testing.T) {
	in := models.Product{Nome: "  Widget  ", Preco: "R$ 10 ", Vendedor: "", Vendidos: " 1.2k vendidos"}
	got := CleanProduct(in)
	want := models.Product{Nome: "Widget", Preco: "R$ 10", Vendedor: "", Vendidos: "1.2k vendidos"}
	if got != want {
		t.Fatalf("CleanProduct() = %+v, want %+v", got, want)
	}
	if in.Nome != "  Widget  " {
		t.Fatalf("input should not be modified")
	}
}
