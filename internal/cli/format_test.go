package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/codigovinario/vinario/internal/review"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4321, "-4,321"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestShortenHome(t *testing.T) {
	t.Setenv("HOME", "/home/sommelier")
	if got := ShortenHome("/home/sommelier/content/resenas"); got != "~/content/resenas" {
		t.Errorf("ShortenHome = %q", got)
	}
	if got := ShortenHome("/srv/content"); got != "/srv/content" {
		t.Errorf("ShortenHome changed unrelated path: %q", got)
	}
}

func TestCountLine(t *testing.T) {
	if got := CountLine(2, 1500); got != "Mostrando 2 de 1,500" {
		t.Errorf("CountLine = %q", got)
	}
}

func TestReviewTable(t *testing.T) {
	var buf bytes.Buffer
	err := ReviewTable(&buf, []review.Summary{
		{Slug: "catena", Title: "Catena Malbec", Winery: "Catena", Varietal: "Malbec", Date: "2024-03-01", Score: review.Float(92)},
		{Slug: "sin-datos", Title: "Sin Datos"},
	})
	if err != nil {
		t.Fatalf("ReviewTable: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "92") || !strings.Contains(lines[1], "Catena · Malbec") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "-") || !strings.HasSuffix(lines[2], "sin-datos") {
		t.Errorf("unexpected second row %q", lines[2])
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("Reseñas", 10); got != "Reseñas   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("Código Vinario", 6); got != "Código" {
		t.Errorf("padRight truncation = %q", got)
	}
}
