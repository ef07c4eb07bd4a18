// Package types provides type definitions for structured data used throughout the presence-audit system.
package types

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AuditRequest holds the business attributes collected by the audit form.
type AuditRequest struct {
	BusinessName string `json:"business_name" validate:"required,max=200"`
	Location     string `json:"location" validate:"required,max=200"`
	Category     string `json:"category,omitempty" validate:"max=120"`
	ContactName  string `json:"contact_name,omitempty" validate:"max=120"`
}

// Normalize trims surrounding whitespace from every field.
func (r *AuditRequest) Normalize() {
	r.BusinessName = strings.TrimSpace(r.BusinessName)
	r.Location = strings.TrimSpace(r.Location)
	r.Category = strings.TrimSpace(r.Category)
	r.ContactName = strings.TrimSpace(r.ContactName)
}

// Validate normalizes the request and validates it using the validator.
func (r *AuditRequest) Validate() error {
	r.Normalize()
	validate := validator.New()
	return validate.Struct(r)
}

// Currency is one entry of the fixed currency catalog.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Label  string `json:"label"`
}

// SanitizedReport is the cleaned fragment returned by the sanitizer.
// Present is false when nothing usable survived cleanup.
type SanitizedReport struct {
	Fragment string `json:"fragment"`
	Present  bool   `json:"present"`
}

// Report is a generated audit kept for rendering and export.
type Report struct {
	ID        uuid.UUID    `json:"id"`
	Request   AuditRequest `json:"request"`
	Currency  string       `json:"currency"`
	Fragment  string       `json:"fragment"`
	Title     string       `json:"title,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	// Session owns the report; other sessions cannot read it.
	Session string `json:"-"`
}

// Theme is the UI colour scheme preference.
type Theme string

// Theme constants
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences are the per-session settings exposed by the settings panel.
type Preferences struct {
	APIKey   string `json:"api_key,omitempty"`
	Theme    Theme  `json:"theme"`
	Currency string `json:"currency"`
}

// MaskedAPIKey returns the credential with all but the last four characters hidden.
func (p Preferences) MaskedAPIKey() string {
	if p.APIKey == "" {
		return ""
	}
	if len(p.APIKey) <= 4 {
		return strings.Repeat("*", len(p.APIKey))
	}
	return strings.Repeat("*", len(p.APIKey)-4) + p.APIKey[len(p.APIKey)-4:]
}
