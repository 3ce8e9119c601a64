package version

import (
	"runtime"
	"testing"
)

func TestInfo_Defaults(t *testing.T) {
	b := Info()
	if b.Service != "wta-api" || b.Version != "dev" {
		t.Fatalf("unexpected build info %+v", b)
	}
	if b.GoVersion != runtime.Version() {
		t.Fatalf("go version = %q", b.GoVersion)
	}
	if b.Commit == "" || b.Date == "" {
		t.Fatalf("commit and date must never be blank: %+v", b)
	}
}

func TestFor_OverridesServiceOnly(t *testing.T) {
	b := For("wta-cli")
	if b.Service != "wta-cli" || b.Version != Info().Version || b.Commit != Info().Commit {
		t.Fatalf("unexpected build info %+v", b)
	}
}

func TestShortRev(t *testing.T) {
	if got := shortRev("0123456789abcdef0123"); got != "0123456789ab" {
		t.Fatalf("shortRev = %q", got)
	}
	if got := shortRev("abc"); got != "abc" {
		t.Fatalf("shortRev short = %q", got)
	}
}
