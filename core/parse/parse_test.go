package parse

import (
	"strings"
	"testing"
)

type analysisSections struct {
	Themes   []string `json:"themes"`
	Findings []string `json:"findings"`
}

func TestParseAs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    analysisSections
		wantErr bool
	}{
		{
			name:  "strict JSON",
			input: `{"themes": ["energy"], "findings": ["light drives the reaction"]}`,
			want:  analysisSections{Themes: []string{"energy"}, Findings: []string{"light drives the reaction"}},
		},
		{
			name: "fenced JSON",
			input: "```json\n" +
				`{"themes": ["energy"], "findings": []}` +
				"\n```",
			want: analysisSections{Themes: []string{"energy"}, Findings: []string{}},
		},
		{
			name:  "single quotes repaired",
			input: `{'themes': ['energy'], 'findings': ['chlorophyll absorbs light']}`,
			want:  analysisSections{Themes: []string{"energy"}, Findings: []string{"chlorophyll absorbs light"}},
		},
		{
			name:  "trailing comma repaired",
			input: `{"themes": ["energy",], "findings": [],}`,
			want:  analysisSections{Themes: []string{"energy"}, Findings: []string{}},
		},
		{
			name:    "prose is not JSON",
			input:   "The document mainly discusses energy conversion.",
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseAs[analysisSections](test.input)
			if (err != nil) != test.wantErr {
				t.Fatalf("ParseAs() error = %v, wantErr %v", err, test.wantErr)
			}
			if test.wantErr {
				return
			}
			if len(got.Themes) != len(test.want.Themes) || (len(got.Themes) > 0 && got.Themes[0] != test.want.Themes[0]) {
				t.Errorf("Themes = %v, want %v", got.Themes, test.want.Themes)
			}
			if len(got.Findings) != len(test.want.Findings) {
				t.Errorf("Findings = %v, want %v", got.Findings, test.want.Findings)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no fence", input: `  {"a": 1}  `, want: `{"a": 1}`},
		{name: "plain fence", input: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "json fence", input: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "fence hugging the braces", input: "```{\"a\": 1}```", want: `{"a": 1}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := StripFences(test.input); got != test.want {
				t.Errorf("StripFences(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestParseAsReportsTargetType(t *testing.T) {
	_, err := ParseAs[analysisSections]("not json at all, just words")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "JSON") {
		t.Errorf("error should mention JSON: %v", err)
	}
}
