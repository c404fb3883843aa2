package i18n

import (
	"context"
	"testing"
)

func TestTranslate(t *testing.T) {
	if err := Init("id"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	ctx := context.Background()
	if got := T(ctx, "checkin_success", map[string]any{"Status": "Terlambat"}); got != "Berhasil absen: Terlambat" {
		t.Fatalf("default locale = %q", got)
	}
	en := WithLocale(ctx, "en")
	if got := T(en, "admin_empty"); got != "No data." {
		t.Fatalf("en = %q", got)
	}
	if got := T(ctx, "no_such_message"); got != "no_such_message" {
		t.Fatalf("unknown id = %q", got)
	}
	if got := T(WithLocale(ctx, "fr"), "admin_empty"); got != "Tidak ada data." {
		t.Fatalf("unsupported locale should fall back, got %q", got)
	}
}

func TestMatch(t *testing.T) {
	if err := Init("id"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cases := map[string]string{
		"":                        "id",
		"en-US,en;q=0.9":          "en",
		"id-ID,id;q=0.9,en;q=0.8": "id",
		"fr-FR":                   "id",
		";;;":                     "id",
	}
	for header, want := range cases {
		if got := Match(header); got != want {
			t.Errorf("Match(%q) = %q, want %q", header, got, want)
		}
	}
}
