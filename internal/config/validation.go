package config

import (
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/overfastsite/internal/foundation"
	"git.home.luguber.info/inful/overfastsite/internal/markdown"
)

// Validate checks a configuration after defaults have been applied.
func Validate(cfg *Config) error {
	result := validateBaseURL(cfg.API.BaseURL).
		Combine(validatePositive("api.timeout", cfg.API.Timeout)).
		Combine(validatePositive("serve.interval", cfg.Serve.Interval)).
		Combine(validateIntroLinks(cfg.Site.Intro))

	if cfg.Notify.NATSURL != "" {
		if _, err := url.Parse(cfg.Notify.NATSURL); err != nil {
			result = result.Combine(foundation.Invalid(
				foundation.NewValidationError("notify.nats_url", "invalid_url", err.Error())))
		}
	}
	return result.ToError()
}

func validateBaseURL(raw string) foundation.ValidationResult {
	if raw == "" {
		return foundation.Invalid(foundation.NewValidationError("api.base_url", "required", "must not be empty"))
	}
	u, err := url.Parse(raw)
	if err != nil {
		return foundation.Invalid(foundation.NewValidationError("api.base_url", "invalid_url", err.Error()))
	}
	return foundation.OneOf("api.base_url scheme", []string{"http", "https"})(u.Scheme)
}

func validatePositive(field string, d time.Duration) foundation.ValidationResult {
	if d <= 0 {
		return foundation.Invalid(foundation.NewValidationError(field, "positive", "must be greater than zero"))
	}
	return foundation.Valid()
}

// validateIntroLinks rejects intro links that would run script in the page.
func validateIntroLinks(intro string) foundation.ValidationResult {
	result := foundation.Valid()
	for _, link := range markdown.Links(intro, markdown.Options{GFM: true}) {
		u, err := url.Parse(strings.TrimSpace(link))
		if err != nil {
			result = result.Combine(foundation.Invalid(
				foundation.NewValidationError("site.intro", "invalid_url", err.Error())))
			continue
		}
		switch strings.ToLower(u.Scheme) {
		case "", "http", "https", "mailto":
		default:
			result = result.Combine(foundation.Invalid(
				foundation.NewValidationError("site.intro", "unsafe_link", "link scheme "+u.Scheme+" is not allowed")))
		}
	}
	return result
}
