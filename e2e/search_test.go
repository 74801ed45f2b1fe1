package e2e

import (
	"context"
	"testing"

	"github.com/dikkadev/tachiext/pkg/selector"
	"golang.org/x/text/language"
)

func TestExtensionSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping extension search e2e test in short mode")
	}

	logger.Println("=== Starting Extension Search Test ===")
	ctx := context.Background()

	container, err := setupContainer(ctx, t)
	if err != nil {
		t.Fatalf("Failed to setup container: %v", err)
	}
	defer container.terminate(ctx)

	testCases := []struct {
		name      string
		input     string
		preferred []language.Tag
		expected  string
	}{
		{
			name:     "Exact package match",
			input:    "eu.foo.ja",
			expected: "eu.foo.ja",
		},
		{
			name:      "Name search prefers English",
			input:     "foo",
			preferred: []language.Tag{language.English},
			expected:  "eu.foo",
		},
		{
			name:      "Name search prefers Japanese",
			input:     "foo",
			preferred: []language.Tag{language.Japanese},
			expected:  "eu.foo.ja",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ext, err := selector.SelectExtension(ctx, container.client(), tc.input, tc.preferred, true)
			if err != nil {
				t.Fatalf("SelectExtension(%q) failed: %v", tc.input, err)
			}
			if ext.PackageName != tc.expected {
				t.Errorf("SelectExtension(%q) = %s, want %s", tc.input, ext.PackageName, tc.expected)
			}
		})
	}

	if _, err := selector.SelectExtension(ctx, container.client(), "does-not-exist", nil, true); err == nil {
		t.Error("Expected error for unknown extension")
	}
}
