package importsession

import (
	"net/url"
	"strings"
)

// ReferenceValidator is the cheap pre-flight check applied before any fetch.
// The backend remains the authority on whether a reference really exists.
type ReferenceValidator interface {
	Validate(ref string) error
}

// DomainValidator accepts absolute http(s) URLs whose host contains Domain.
type DomainValidator struct {
	Domain string
}

// NewDomainValidator returns a validator for the given source-portal domain fragment.
func NewDomainValidator(domain string) DomainValidator {
	return DomainValidator{Domain: strings.ToLower(strings.TrimSpace(domain))}
}

func (v DomainValidator) Validate(ref string) error {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return &InvalidReferenceError{Reason: "url is required"}
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return &InvalidReferenceError{Reference: ref, Reason: "not a valid url"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &InvalidReferenceError{Reference: ref, Reason: "url must use http or https"}
	}
	if u.Host == "" {
		return &InvalidReferenceError{Reference: ref, Reason: "url has no host"}
	}
	if v.Domain != "" && !strings.Contains(strings.ToLower(u.Host), v.Domain) {
		return &InvalidReferenceError{Reference: ref, Reason: "url is not on the " + v.Domain + " portal"}
	}
	return nil
}
