package http

import (
	"wta/internal/platform/logger"
	"wta/internal/platform/net/http/bind"
)

// ValidID reports whether id uses only unreserved url characters
func ValidID(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == '~', c == '-':
		default:
			return false
		}
	}
	return true
}

func registerValidators() {
	err := bind.RegisterValidation("cmpid", func(fl bind.FieldLevel) bool {
		return ValidID(fl.Field().String())
	})
	if err != nil {
		logger.Named("diff-http").Error().Err(err).Msg("register cmpid validator")
	}
	bind.RegisterTranslation("cmpid", "{0} may only contain letters, digits and . _ ~ -")
}
