package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedLoader(t *testing.T) {
	t.Parallel()

	t.Run("default style", func(t *testing.T) {
		t.Parallel()

		css, err := NewEmbeddedLoader().LoadStyle(DefaultStyleName)
		if err != nil {
			t.Fatalf("LoadStyle() error = %v", err)
		}
		for _, class := range []string{".chip", ".card", ".summary-card"} {
			if !strings.Contains(css, class) {
				t.Errorf("style missing %s", class)
			}
		}
	})

	t.Run("default template set", func(t *testing.T) {
		t.Parallel()

		ts, err := NewEmbeddedLoader().LoadTemplateSet(DefaultTemplateSetName)
		if err != nil {
			t.Fatalf("LoadTemplateSet() error = %v", err)
		}
		if !strings.Contains(ts.Recommendations, "Recommended Learning Materials") {
			t.Error("recommendations template missing heading")
		}
		if !strings.Contains(ts.Analytics, "Time Analysis") {
			t.Error("analytics template missing time analysis")
		}
	})

	t.Run("unknown names", func(t *testing.T) {
		t.Parallel()

		if _, err := NewEmbeddedLoader().LoadStyle("nope"); !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("LoadStyle() error = %v, want ErrStyleNotFound", err)
		}
		if _, err := NewEmbeddedLoader().LoadTemplateSet("nope"); !errors.Is(err, ErrTemplateSetNotFound) {
			t.Errorf("LoadTemplateSet() error = %v, want ErrTemplateSetNotFound", err)
		}
	})
}

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "simple name", input: "report", wantErr: nil},
		{name: "hyphen and digits", input: "school-2026", wantErr: nil},
		{name: "empty", input: "", wantErr: ErrInvalidAssetName},
		{name: "forward slash", input: "a/b", wantErr: ErrInvalidAssetName},
		{name: "backslash", input: `a\b`, wantErr: ErrInvalidAssetName},
		{name: "traversal", input: "..", wantErr: ErrInvalidAssetName},
		{name: "extension", input: "report.css", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if tt.wantErr == nil && err != nil {
				t.Errorf("ValidateAssetName(%q) error = %v", tt.input, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAssetName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
