package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Name      string   `json:"name"`
	UnitPrice float64  `json:"unitPrice"`
	Qty       float64  `json:"qty"`
	Tags      []string `json:"tags"`
	Note      *string  `json:"note"`
}

func TestWrite_EDN(t *testing.T) {
	var buf bytes.Buffer
	v := sample{Name: "Design", UnitPrice: 2.5, Qty: 2, Tags: []string{"a", "b"}}
	if err := Write(&buf, v, "edn", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{:name "Design" :note nil :qty 2 :tags ["a" "b"] :unit-price 2.5}` + "\n"
	if buf.String() != want {
		t.Fatalf("edn mismatch:\nwant %q\ngot  %q", want, buf.String())
	}
}

func TestWrite_EDNPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string]any{"data": []int{1}}, true); err != nil {
		t.Fatal(err)
	}
	want := "{\n  :data [\n    1\n  ]\n}\n"
	if buf.String() != want {
		t.Fatalf("pretty edn mismatch:\n%s", buf.String())
	}
}

func TestWrite_JSONKeepsHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]string{"html": "<p>a & b</p>"}, "", false); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"html":"<p>a & b</p>"}` {
		t.Fatalf("unexpected json %s", got)
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{Name: "x", Tags: []string{}}, "yaml", false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "unitPrice: 0") || !strings.Contains(buf.String(), "name: x") {
		t.Fatalf("unexpected yaml:\n%s", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "xml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestKeyword(t *testing.T) {
	cases := map[string]string{
		"id":                "id",
		"unitPrice":         "unit-price",
		"bottomBorderWidth": "bottom-border-width",
		"saved_at":          "saved-at",
	}
	for in, want := range cases {
		if got := Keyword(in); got != want {
			t.Errorf("Keyword(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMoney(t *testing.T) {
	cases := []struct {
		amount float64
		code   string
		want   string
	}{
		{143, "USD", "$143.00"},
		{1234.5, "usd", "$1,234.50"},
		{-13, "USD", "-$13.00"},
		{99, "EUR", "€99.00"},
		{12.345, "QQQ", "12.35 QQQ"},
	}
	for _, tc := range cases {
		if got := Money(tc.amount, tc.code); got != tc.want {
			t.Errorf("Money(%v, %q) = %q, want %q", tc.amount, tc.code, got, tc.want)
		}
	}
}

func TestBytesPercentQty(t *testing.T) {
	if got := Bytes(1536); got != "1.5 KiB" {
		t.Errorf("Bytes(1536) = %q", got)
	}
	if got := Bytes(-1); got != "0 B" {
		t.Errorf("Bytes(-1) = %q", got)
	}
	if got := Percent(8.5); got != "8.5%" {
		t.Errorf("Percent(8.5) = %q", got)
	}
	if got := Qty(10); got != "10" {
		t.Errorf("Qty(10) = %q", got)
	}
}
