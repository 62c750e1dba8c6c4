package domain

import "testing"

func TestNormalizeStoreDomain(t *testing.T) {
	cases := map[string]string{
		"https://shop.example.com/":  "shop.example.com",
		"shop.example.com":           "shop.example.com",
		"http://shop.example.com":    "shop.example.com",
		"HTTPS://Shop.example.com/":  "Shop.example.com",
		"  shop.example.com/  ":      "shop.example.com",
		"https://shop.example.com//": "shop.example.com",
	}

	for in, want := range cases {
		got := NormalizeStoreDomain(in)
		if got != want {
			t.Errorf("NormalizeStoreDomain(%q) = %q, want %q", in, got, want)
		}
		if again := NormalizeStoreDomain(got); again != got {
			t.Errorf("not idempotent for %q: %q then %q", in, got, again)
		}
	}
}

func TestSyncOptionsFromFlags(t *testing.T) {
	if got := SyncOptionsFromFlags(false, false); !got.Products || !got.Socials {
		t.Fatalf("expected both when neither set, got %+v", got)
	}
	if got := SyncOptionsFromFlags(true, false); !got.Products || got.Socials {
		t.Fatalf("expected products only, got %+v", got)
	}
	if got := SyncOptionsFromFlags(false, true); got.Products || !got.Socials {
		t.Fatalf("expected socials only, got %+v", got)
	}
}
