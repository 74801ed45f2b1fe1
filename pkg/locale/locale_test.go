package locale

import (
	"testing"

	"github.com/dikkadev/tachiext/pkg/github"
	"golang.org/x/text/language"
)

func TestPreferred(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		tags := Preferred([]string{"ja", "pt_BR", "bogus-!!"})
		if len(tags) != 2 {
			t.Fatalf("Expected 2 tags, got %v", tags)
		}
		if tags[1] != language.MustParse("pt-BR") {
			t.Errorf("Expected pt-BR, got %s", tags[1])
		}
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("LC_ALL", "")
		t.Setenv("LANG", "de_DE.UTF-8")
		tags := Preferred(nil)
		if len(tags) != 1 || tags[0] != language.MustParse("de-DE") {
			t.Errorf("Expected de-DE, got %v", tags)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		t.Setenv("LC_ALL", "C")
		t.Setenv("LANG", "")
		tags := Preferred(nil)
		if len(tags) != 1 || tags[0] != language.English {
			t.Errorf("Expected English, got %v", tags)
		}
	})
}

func TestMatches(t *testing.T) {
	preferred := []language.Tag{language.English, language.MustParse("pt")}

	tests := []struct {
		lang string
		want bool
	}{
		{"en", true},
		{"pt-BR", true},
		{"all", true},
		{"other", true},
		{"ja", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			if got := Matches(tt.lang, preferred); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.lang, got, tt.want)
			}
		})
	}
}

func TestFilterExtensions(t *testing.T) {
	exts := []github.Extension{
		{PackageName: "en.foo", Lang: "en"},
		{PackageName: "ja.foo", Lang: "ja"},
		{PackageName: "all.foo", Lang: "all"},
	}

	got := FilterExtensions(exts, []language.Tag{language.English})
	if len(got) != 2 || got[0].PackageName != "en.foo" || got[1].PackageName != "all.foo" {
		t.Errorf("FilterExtensions() = %+v", got)
	}
}

func TestBest(t *testing.T) {
	exts := []github.Extension{
		{PackageName: "all.mangadex", Lang: "all"},
		{PackageName: "ja.mangadex", Lang: "ja"},
		{PackageName: "es.mangadex", Lang: "es-419"},
	}

	t.Run("exact language", func(t *testing.T) {
		got, err := Best(exts, []language.Tag{language.Japanese})
		if err != nil {
			t.Fatal(err)
		}
		if got.PackageName != "ja.mangadex" {
			t.Errorf("Best() = %s, want ja.mangadex", got.PackageName)
		}
	})

	t.Run("regional variant", func(t *testing.T) {
		got, err := Best(exts, []language.Tag{language.MustParse("es-MX")})
		if err != nil {
			t.Fatal(err)
		}
		if got.PackageName != "es.mangadex" {
			t.Errorf("Best() = %s, want es.mangadex", got.PackageName)
		}
	})

	t.Run("falls back to all", func(t *testing.T) {
		got, err := Best(exts, []language.Tag{language.Korean})
		if err != nil {
			t.Fatal(err)
		}
		if got.PackageName != "all.mangadex" {
			t.Errorf("Best() = %s, want all.mangadex", got.PackageName)
		}
	})

	t.Run("no match", func(t *testing.T) {
		if _, err := Best(exts[1:2], []language.Tag{language.Korean}); err == nil {
			t.Error("Expected error when nothing matches")
		}
	})
}
