package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"plain number", "1999", 1999},
		{"decimal", "499.50", 499.5},
		{"currency prefix", "₹1,099", 1099},
		{"dollar sign", "$24.99", 24.99},
		{"empty", "", 0},
		{"garbage", "call for price", 0},
		{"multiple dots", "1.2.3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePrice(tt.raw); got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPriceUnmarshal(t *testing.T) {
	var p struct {
		Price Price `json:"price"`
	}

	if err := json.Unmarshal([]byte(`{"price": "₹2,499"}`), &p); err != nil {
		t.Fatalf("unmarshal string price: %v", err)
	}
	if got := p.Price.Value(); got != 2499 {
		t.Errorf("string price value = %v, want 2499", got)
	}

	if err := json.Unmarshal([]byte(`{"price": 349.9}`), &p); err != nil {
		t.Fatalf("unmarshal numeric price: %v", err)
	}
	if got := p.Price.Value(); got != 349.9 {
		t.Errorf("numeric price value = %v, want 349.9", got)
	}

	if err := json.Unmarshal([]byte(`{"price": null}`), &p); err != nil {
		t.Fatalf("unmarshal null price: %v", err)
	}
	if !p.Price.IsZero() {
		t.Error("null price should be zero")
	}
	if got := p.Price.Value(); got != 0 {
		t.Errorf("null price value = %v, want 0", got)
	}
}

func TestProductUnmarshalAliases(t *testing.T) {
	data := []byte(`{
		"id": "P42",
		"name": "USB-C Hub",
		"description": "7-in-1 hub",
		"manufacturer": "Portly",
		"discounted_price": "₹1,299",
		"category": "Accessories"
	}`)

	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID != "P42" {
		t.Errorf("ID = %q, want P42", p.ID)
	}
	if p.Name != "USB-C Hub" {
		t.Errorf("Name = %q, want USB-C Hub", p.Name)
	}
	if p.About != "7-in-1 hub" {
		t.Errorf("About = %q", p.About)
	}
	if p.Brand != "Portly" {
		t.Errorf("Brand = %q, want Portly", p.Brand)
	}
	if got := p.Price.Value(); got != 1299 {
		t.Errorf("Price = %v, want 1299", got)
	}
}

func TestCompositeQuery(t *testing.T) {
	p := Product{
		ID:       "P1",
		Name:     "Trail Runner",
		About:    "Lightweight running shoe",
		Category: "Footwear",
		Brand:    "Stride",
		Features: AttrOf("breathable mesh", "rock plate"),
		Tags:     AttrOf("running", "outdoor"),
		Specs:    AttrMapOf(AttrPair{Key: "weight", Value: "240g"}),
	}

	got := p.CompositeQuery()
	want := "Trail Runner Lightweight running shoe Footwear Stride " +
		"breathable mesh, rock plate running, outdoor weight: 240g"
	if got != want {
		t.Errorf("CompositeQuery = %q, want %q", got, want)
	}
}

func TestCompositeQueryOmitsEmptyParts(t *testing.T) {
	p := Product{ID: "P2", Name: "Mystery Box"}
	if got := p.CompositeQuery(); got != "Mystery Box" {
		t.Errorf("CompositeQuery = %q, want %q", got, "Mystery Box")
	}
}

func TestDocText(t *testing.T) {
	p := Product{
		ID:       "P1",
		Name:     "Trail Runner",
		About:    "Lightweight running shoe",
		Category: "Footwear",
		Price:    NewPrice("2499"),
	}

	got := p.DocText()
	for _, part := range []string{
		"Name: Trail Runner.",
		"Description: Lightweight running shoe.",
		"Category: Footwear.",
		"Price: 2499 (mid-range).",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("DocText missing %q in %q", part, got)
		}
	}
	if strings.Contains(got, "Brand:") {
		t.Errorf("DocText should omit absent brand: %q", got)
	}
}

func TestPriceBucket(t *testing.T) {
	tests := []struct {
		price string
		want  string
	}{
		{"500", "budget"},
		{"1000", "budget"},
		{"1001", "mid-range"},
		{"5000", "mid-range"},
		{"9999", "premium"},
		{"", "budget"},
	}
	for _, tt := range tests {
		p := Product{Price: NewPrice(tt.price)}
		if got := p.PriceBucket(); got != tt.want {
			t.Errorf("PriceBucket(%q) = %q, want %q", tt.price, got, tt.want)
		}
	}
}
