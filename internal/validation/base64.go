package validation

import (
	"encoding/base64"
	"strconv"

	validation "github.com/jellydator/validation"
)

// Base64 validates that a string is valid base64-encoded data.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})

// MaxBytes rejects byte slices longer than limit. A non-positive limit disables the check.
func MaxBytes(limit int) validation.Rule {
	return validation.By(func(value interface{}) error {
		b, ok := value.([]byte)
		if !ok {
			return validation.NewError("validation_bytes_type", "must be binary content")
		}
		if limit > 0 && len(b) > limit {
			return validation.NewError(
				"validation_bytes_max",
				"must not exceed "+strconv.Itoa(limit)+" bytes",
			)
		}
		return nil
	})
}
