package module

import (
	"runtime"
	"strings"
	"time"

	"wta/internal/platform/config"
)

// Options controls the comparison engine and its storage
type Options struct {
	Store      string // pg, badger or memory
	Comparator string // bytes or text
	Charset    string // text comparator charset
	Workers    int
	MaxBytes   int64
	Migrate    bool // apply the Postgres schema at boot

	BadgerPath  string
	BadgerInMem bool

	Auth AuthOptions
}

// AuthOptions controls bearer identity
type AuthOptions struct {
	PublicKeyPEM string        // RS256 verification key
	Insecure     bool          // treat the raw token as the owner id when no key is set
	Leeway       time.Duration // clock skew tolerated on exp and nbf
}

// FromConfig reads CORE_API_DIFF_* and CORE_API_AUTH_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	dc := cfg.Prefix("CORE_API_DIFF_")
	ac := cfg.Prefix("CORE_API_AUTH_")
	return Options{
		Store:      strings.ToLower(dc.MayEnum("STORE", "pg", "pg", "badger", "memory")),
		Comparator: strings.ToLower(dc.MayEnum("COMPARATOR", "bytes", "bytes", "text")),
		Charset:    dc.MayString("CHARSET", "utf-8"),
		Workers:    dc.MayInt("WORKERS", runtime.NumCPU()),
		MaxBytes:   int64(dc.MayInt("MAX_BYTES", 5<<20)),
		Migrate:    dc.MayBool("MIGRATE", true),

		BadgerPath:  dc.MayString("BADGER_PATH", "./data/badger"),
		BadgerInMem: dc.MayBool("BADGER_INMEM", false),
		Auth: AuthOptions{
			PublicKeyPEM: ac.MayString("PUBKEY", ""),
			Insecure:     ac.MayBool("INSECURE", false),
			Leeway:       ac.MayDuration("LEEWAY", 30*time.Second),
		},
	}
}
