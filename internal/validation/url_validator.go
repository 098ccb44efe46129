package validation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("youtube_url", validateYouTubeURL)
}

// New returns the shared validator with the youtube_url rule registered.
func New() *validator.Validate {
	return validate
}

// ValidateURL checks a single URL against the youtube_url rule.
func ValidateURL(u string) error {
	if err := validate.Var(u, "required,youtube_url"); err != nil {
		return fmt.Errorf("invalid URL %q: %w", u, err)
	}
	return nil
}

func validateYouTubeURL(fl validator.FieldLevel) bool {
	urlStr := strings.TrimSpace(fl.Field().String())

	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}
