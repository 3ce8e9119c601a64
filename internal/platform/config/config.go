// Package config reads settings from the environment through prefixed views,
// e.g. New().Prefix("CORE_API_DIFF_").MayInt("WORKERS", 4) reads CORE_API_DIFF_WORKERS
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"wta/internal/platform/logger"
)

// Conf is a view over the environment under a key prefix
type Conf struct{ prefix string }

// New is the unprefixed root view
func New() Conf { return Conf{} }

// Prefix narrows the view, prefixes accumulate
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) lookup(key string) (full, val string) {
	full = c.prefix + key
	return full, strings.TrimSpace(os.Getenv(full))
}

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	full, v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", full).Msg("missing required env")
	}
	return v
}

// MayString returns def when key is unset or blank
func (c Conf) MayString(key, def string) string {
	if _, v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// may parses key, falling back to def with a warning when the value does not parse
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	full, s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", full).Str("value", s).Interface("default", def).Msg("invalid value, using default")
		return def
	}
	return v
}

func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits a comma separated value, dropping blanks. def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	_, s := c.lookup(key)
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value when it case-insensitively matches one of allowed, def when unset.
// Any other value panics, a typo in an enum should stop the boot
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	full, v := c.lookup(key)
	if v == "" {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", full).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
