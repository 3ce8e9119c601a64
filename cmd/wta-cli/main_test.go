package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wta/internal/core/diff"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCompare_JSON(t *testing.T) {
	dir := t.TempDir()
	l := writeFile(t, dir, "l.bin", []byte{10, 20, 10, 20})
	r := writeFile(t, dir, "r.bin", []byte{20, 20, 20, 20})

	out, err := execute(t, "compare", l, r, "--json")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	var res diff.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := diff.Result{Status: diff.StatusEqualLength, Differences: []diff.Span{{Offset: 0, Length: 1}, {Offset: 2, Length: 1}}}
	if !res.Equal(want) {
		t.Fatalf("got %+v, want %+v", res, want)
	}
}

func TestCompare_HumanText(t *testing.T) {
	dir := t.TempDir()
	l := writeFile(t, dir, "l.txt", []byte("héllo"))
	r := writeFile(t, dir, "r.txt", []byte("hallo"))

	out, err := execute(t, "compare", "--mode", "text", l, r)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	for _, want := range []string{"EQUAL_LENGTH (text/utf-8)", "6 B", "5 B", "differs at 1 for 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCompare_Errors(t *testing.T) {
	dir := t.TempDir()
	l := writeFile(t, dir, "l", nil)

	if _, err := execute(t, "compare", l); err == nil {
		t.Fatalf("expected arg count error")
	}
	if _, err := execute(t, "compare", l, filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected missing file error")
	}
	if _, err := execute(t, "compare", "--mode", "words", l, l); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil || !strings.HasPrefix(out, "wta-cli dev") {
		t.Fatalf("version = %q, %v", out, err)
	}
	out, err = execute(t, "version", "--json")
	if err != nil || !strings.Contains(out, `"service":"wta-cli"`) {
		t.Fatalf("version json = %q, %v", out, err)
	}
}

func TestMigrate_RequiresDSN(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "")
	if _, err := execute(t, "migrate"); err == nil || !strings.Contains(err.Error(), "SERVICE_PGSQL_DBURL") {
		t.Fatalf("expected missing dsn error, got %v", err)
	}
}
