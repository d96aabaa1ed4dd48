package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtnitsch/bac-archiver/models"
)

func TestDefault(t *testing.T) {
	rs := Default()

	if rs.Version == "" {
		t.Error("default rules have no version")
	}
	if !rs.IsProbe("a") || rs.IsProbe("z") {
		t.Errorf("IsProbe mismatch for probes %v", rs.Probes)
	}
	if !rs.IsSubject("mate") {
		t.Error("mate missing from subject dictionary")
	}
	if got := rs.Sessions.RetakeDefault; got != models.SessionMainIRetake {
		t.Errorf("RetakeDefault = %v, want %v", got, models.SessionMainIRetake)
	}
	if got := rs.Sessions.Codes["08"]; got != models.SessionMainII {
		t.Errorf("Codes[08] = %v, want %v", got, models.SessionMainII)
	}
	if tracks := rs.FanOut["mate-info-bareme"]; len(tracks) != 2 {
		t.Errorf("FanOut[mate-info-bareme] = %v, want two tracks", tracks)
	}
	if rs.Bucket != "pages" || rs.GeneralSubcategory != "bac" {
		t.Errorf("Bucket/GeneralSubcategory = %q/%q", rs.Bucket, rs.GeneralSubcategory)
	}
	if !rs.HasExtension("X.PDF") || rs.HasExtension("x.docx") {
		t.Error("HasExtension mismatch")
	}
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()
	a.Subjects[0].Subject = "changed"
	if b.Subjects[0].Subject == "changed" {
		t.Error("Default() shares state between calls")
	}
}

func TestParse_Roundtrip(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	rs, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rs.Sessions.Keywords[0].Session != models.SessionModel {
		t.Errorf("first session keyword = %v, want Model", rs.Sessions.Keywords[0].Session)
	}
}

func TestParse_Normalizes(t *testing.T) {
	rs, err := Parse([]byte(`
version: test
probes: [A]
subjects:
  - {keyword: MATEMATICA, subject: mate}
sessions:
  keywords:
    - {keyword: MODEL, session: Model}
extensions: [.PDF]
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rs.Probes[0] != "a" || rs.Subjects[0].Keyword != "matematica" || rs.Sessions.Keywords[0].Keyword != "model" {
		t.Errorf("tables not lower-cased: %+v", rs)
	}
	if rs.Bucket != "pages" {
		t.Errorf("Bucket = %q, want default %q", rs.Bucket, "pages")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty subjects",
			yaml:    "version: x\nextensions: [.pdf]\n",
			wantErr: "subject dictionary is empty",
		},
		{
			name:    "fan-out needs two tracks",
			yaml:    "subjects: [{keyword: a, subject: a}]\nextensions: [.pdf]\nfan_out: {x-bareme: [x-C]}\n",
			wantErr: "exactly two tracks",
		},
		{
			name:    "bad session code",
			yaml:    "subjects: [{keyword: a, subject: a}]\nextensions: [.pdf]\nsessions: {codes: {\"6\": MainSessionI}}\n",
			wantErr: "two digits",
		},
		{
			name:    "unknown session name",
			yaml:    "subjects: [{keyword: a, subject: a}]\nextensions: [.pdf]\nsessions: {keywords: [{keyword: x, session: Winter}]}\n",
			wantErr: "unknown session type",
		},
		{
			name:    "unknown field",
			yaml:    "subjects: [{keyword: a, subject: a}]\nextensions: [.pdf]\ncolour: blue\n",
			wantErr: "colour",
		},
		{
			name:    "probe default to unknown subject",
			yaml:    "probes: [a]\nprobe_defaults: {a: nope}\nsubjects: [{keyword: a, subject: a}]\nextensions: [.pdf]\n",
			wantErr: "unknown subject",
		},
		{
			name:    "suffix without underscore",
			yaml:    "subjects: [{keyword: a, subject: a}]\nextensions: [.pdf]\nlanguage_suffixes: [LRO]\n",
			wantErr: "underscore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Parse() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	rs, err := LoadOrDefault("")
	if err != nil || rs == nil {
		t.Fatalf("LoadOrDefault(\"\") = %v, %v", rs, err)
	}

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("version: custom\nsubjects: [{keyword: x, subject: x}]\nextensions: [.pdf]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	rs, err = LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault(%q) error = %v", path, err)
	}
	if rs.Version != "custom" {
		t.Errorf("Version = %q, want custom", rs.Version)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of missing file should fail")
	}
}
