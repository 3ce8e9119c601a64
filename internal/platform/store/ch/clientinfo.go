package ch

import (
	"os"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo names this process in system.query_log: the app tag, its role and, when
// the binary carries vcs info, the short commit
func BuildClientInfo(role, tag string) clickhouse.ClientInfo {
	type product = struct{ Name, Version string }

	out := []product{
		{Name: "wta", Version: strings.TrimSpace(tag)},
		{Name: "role", Version: strings.TrimSpace(role)},
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		out = append(out, product{Name: "go", Version: bi.GoVersion})
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				out = append(out, product{Name: "commit", Version: s.Value[:7]})
			}
		}
	}
	if host, err := os.Hostname(); err == nil {
		out = append(out, product{Name: "host", Version: host})
	}
	return clickhouse.ClientInfo{Products: out}
}
