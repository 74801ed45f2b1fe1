package github

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const testRepo = "https://raw.githubusercontent.com/inorichi/tachiyomi-extensions/repo"

func fooEntry(version string) ManifestEntry {
	return ManifestEntry{
		Name:    "Tachiyomi: Foo",
		Pkg:     "eu.foo",
		Apk:     "foo.apk",
		Version: version,
		Code:    14,
		Lang:    "en",
		NSFW:    0,
	}
}

func TestLibVersion(t *testing.T) {
	tests := []struct {
		version string
		want    float64
		wantErr bool
	}{
		{"1.4.2", 1.4, false},
		{"1.2.14", 1.2, false},
		{"1.2", 1, false},
		{"2", 2, false},
		{"10.0.1", 10.0, false},
		{"", 0, true},
		{".5", 0, true},
		{"a.b.c", 0, true},
		{"1.2.3.4", 0, true},
		{"NaN", 0, true},
		{"1e2", 0, true},
		{"-1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := LibVersion(tt.version)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LibVersion(%q) error = %v, wantErr %v", tt.version, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedEntry) {
				t.Errorf("LibVersion(%q) error = %v, want ErrMalformedEntry", tt.version, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("LibVersion(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestParseManifestAccepted(t *testing.T) {
	bounds := LibBounds{Min: 1.2, Max: 1.5}

	got, skipped := ParseManifest([]ManifestEntry{fooEntry("1.4.2")}, bounds, testRepo)
	if len(skipped) != 0 {
		t.Fatalf("Unexpected skipped entries: %v", skipped)
	}
	if len(got) != 1 {
		t.Fatalf("Got %d extensions, want 1", len(got))
	}

	want := Extension{
		Name:        "Foo",
		PackageName: "eu.foo",
		VersionName: "1.4.2",
		VersionCode: 14,
		Lang:        "en",
		IsNSFW:      false,
		ApkName:     "foo.apk",
		IconURL:     testRepo + "/icon/foo.png",
	}
	if got[0] != want {
		t.Errorf("ParseManifest() = %+v, want %+v", got[0], want)
	}
}

func TestParseManifestOutOfRange(t *testing.T) {
	bounds := LibBounds{Min: 1.2, Max: 1.5}

	got, skipped := ParseManifest([]ManifestEntry{fooEntry("2.0.0")}, bounds, testRepo)
	if len(got) != 0 {
		t.Errorf("Out of range entry was accepted: %+v", got)
	}
	if len(skipped) != 0 {
		t.Errorf("Out of range entry must be dropped silently, got %v", skipped)
	}
}

func TestParseManifestBounds(t *testing.T) {
	bounds := LibBounds{Min: 1.2, Max: 1.5}
	versions := map[string]bool{
		"1.1.9": false,
		"1.2.0": true,
		"1.3.7": true,
		"1.5.1": true,
		"1.6.0": false,
		"0.9.1": false,
		"1":     false,
	}

	for version, accepted := range versions {
		got, _ := ParseManifest([]ManifestEntry{fooEntry(version)}, bounds, testRepo)
		if (len(got) == 1) != accepted {
			t.Errorf("version %s accepted = %v, want %v", version, len(got) == 1, accepted)
		}
	}
}

func TestParseManifestMalformed(t *testing.T) {
	entries := []ManifestEntry{
		fooEntry("1.2.1"),
		{Name: "Bar", Pkg: "eu.bar", Apk: "bar.apk", Version: "beta", Code: 1, Lang: "en"},
		{Name: "Baz", Pkg: "eu.baz", Apk: "baz.apk", Version: "1.2.3", Code: 3, Lang: "ja", NSFW: 1},
	}

	got, skipped := ParseManifest(entries, DefaultLibBounds(), testRepo)
	if len(got) != 2 {
		t.Fatalf("Got %d extensions, want 2", len(got))
	}
	if got[0].PackageName != "eu.foo" || got[1].PackageName != "eu.baz" {
		t.Errorf("Order not preserved: %s, %s", got[0].PackageName, got[1].PackageName)
	}
	if !got[1].IsNSFW {
		t.Error("nsfw=1 should map to IsNSFW")
	}
	if got[1].Name != "Baz" {
		t.Errorf("Name without branding prefix changed: %q", got[1].Name)
	}

	if len(skipped) != 1 {
		t.Fatalf("Got %d skipped entries, want 1", len(skipped))
	}
	if !errors.Is(skipped[0], ErrMalformedEntry) || !strings.Contains(skipped[0].Error(), "eu.bar") {
		t.Errorf("Unexpected skip error: %v", skipped[0])
	}
}

func TestParseManifestIdempotent(t *testing.T) {
	entries := []ManifestEntry{
		fooEntry("1.2.1"),
		{Name: "Tachiyomi: Qux", Pkg: "eu.qux", Apk: "tachiyomi-all.qux-v1.2.5.apk", Version: "1.2.5", Code: 5, Lang: "all"},
	}

	first, _ := ParseManifest(entries, DefaultLibBounds(), testRepo)
	second, _ := ParseManifest(entries, DefaultLibBounds(), testRepo)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ParseManifest is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestDerivedURLs(t *testing.T) {
	apk := "tachiyomi-en.foo-v1.2.14.apk"

	if got, want := IconURL(testRepo, apk), testRepo+"/icon/tachiyomi-en.foo-v1.2.14.png"; got != want {
		t.Errorf("IconURL() = %s, want %s", got, want)
	}
	if got, want := ApkURL(testRepo+"/", apk), testRepo+"/apk/"+apk; got != want {
		t.Errorf("ApkURL() = %s, want %s", got, want)
	}
}
