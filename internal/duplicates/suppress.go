package duplicates

import (
	"fmt"
	"strings"
)

// Suppressor names accepted by ParseSuppressor.
const (
	SuppressForm = "form"
	SuppressNone = "none"
)

// ParseSuppressor maps a configured name to a Suppressor. "none" yields nil.
func ParseSuppressor(name string) (Suppressor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SuppressForm:
		return FormTemplate, nil
	case SuppressNone, "off":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown suppressor %q (want %s or %s)", name, SuppressForm, SuppressNone)
	}
}
