// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Doc: {
	name:  string & =~"^[a-z]+$"
	tags?: [...string]
	size:  int | *1
}
`

type testDoc struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
	Size int      `json:"size"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	result, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "web", tags: ["a", "b"]`), "#Doc")
	if err != nil {
		t.Fatalf("ParseAndDecode: %v", err)
	}
	if result.Value.Name != "web" || len(result.Value.Tags) != 2 || result.Value.Size != 1 {
		t.Errorf("decoded = %+v", result.Value)
	}
}

func TestParseAndDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		opts    []Option
		wantSub string
	}{
		{"schema violation", `name: "Web"`, []Option{WithFilename("apps.cue")}, "apps.cue: name"},
		{"syntax error", `name: `, []Option{WithFilename("broken.cue")}, "broken.cue"},
		{"missing required field", `size: 2`, nil, "<input>"},
		{"file too large", `name: "web"`, []Option{WithMaxFileSize(4)}, "exceeds maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(tt.data), "#Doc", tt.opts...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not contain %q", err, tt.wantSub)
			}
		})
	}
}

func TestUnify_NonConcrete(t *testing.T) {
	t.Parallel()

	if _, err := Unify([]byte(testSchema), []byte(`tags: ["x"]`), "#Doc", WithConcrete(false)); err != nil {
		t.Errorf("non-concrete unify failed: %v", err)
	}
}

func TestUnify_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := Unify([]byte(testSchema), []byte(`name: "web"`), "#Nope")
	if err == nil || !strings.Contains(err.Error(), "#Nope") {
		t.Errorf("expected missing definition error, got %v", err)
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x.cue") != nil {
		t.Error("FormatError(nil) must be nil")
	}
	err := FormatError(errors.New("boom"), "x.cue")
	if err == nil || err.Error() != "x.cue: boom" {
		t.Errorf("FormatError = %v", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"apps"}, "apps"},
		{[]string{"apps", "web", "command"}, "apps.web.command"},
		{[]string{"apps", "web", "volumes", "0"}, "apps.web.volumes[0]"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "a.cue"); err != nil {
		t.Errorf("data at the limit rejected: %v", err)
	}
	err := CheckFileSize(make([]byte, 11), 10, "a.cue")
	if err == nil || !strings.Contains(err.Error(), "a.cue") || !strings.Contains(err.Error(), "11") {
		t.Errorf("CheckFileSize = %v", err)
	}
}
