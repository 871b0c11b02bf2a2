package product

import (
	"errors"
	"strings"
	"testing"
)

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name    string
		pname   string
		price   int64
		stock   int64
		wantErr error
	}{
		{"valid", "Widget", 100, 10, nil},
		{"zero stock allowed", "Widget", 100, 0, nil},
		{"empty name", "", 100, 10, ErrInvalidName},
		{"name too long", strings.Repeat("x", 51), 100, 10, ErrInvalidName},
		{"name at limit", strings.Repeat("x", 50), 100, 10, nil},
		{"negative price", "Widget", -1, 10, ErrInvalidPrice},
		{"negative stock", "Widget", 100, -1, ErrInvalidStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.pname, tc.price, tc.stock)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNameLimitCountsCodePoints(t *testing.T) {
	// 50 multi-byte runes must pass even though the byte length exceeds 50.
	name := strings.Repeat("ü", 50)
	if _, err := New(name, 1, 1); err != nil {
		t.Fatalf("expected 50-rune name to pass, got %v", err)
	}
}

func TestDeduct(t *testing.T) {
	p := &Product{ID: 1, Name: "Widget", Price: 100, Stock: 10}

	if err := p.Deduct(0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := p.Deduct(11); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if p.Stock != 10 {
		t.Fatalf("failed deduct must not change stock, got %d", p.Stock)
	}
	if err := p.Deduct(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", p.Stock)
	}
}

func TestRestock(t *testing.T) {
	p := &Product{ID: 1, Name: "Widget", Price: 100, Stock: 10}

	if err := p.Restock(0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := p.Restock(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Stock != 15 {
		t.Fatalf("expected stock 15, got %d", p.Stock)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := &Product{ID: 1, Name: "Widget", Price: 100, Stock: 10}
	c := p.Clone()
	c.Stock = 99
	if p.Stock != 10 {
		t.Fatalf("clone aliases the original")
	}
}
