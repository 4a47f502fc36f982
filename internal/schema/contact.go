package schema

import (
	"fmt"
	"strings"
)

// Phone is a single phone field on a contact. An absent phone is the zero
// value (Valid=false), never an empty string, so that uniqueness comparisons
// treat "absent" uniformly and the store can map it to NULL.
type Phone struct {
	Number string
	Valid  bool
}

// NormalizePhone trims s and converts whitespace-only input to the
// absent marker.
func NormalizePhone(s string) Phone {
	s = strings.TrimSpace(s)
	if s == "" {
		return Phone{}
	}
	return Phone{Number: s, Valid: true}
}

func (p Phone) String() string {
	if !p.Valid {
		return "-"
	}
	return p.Number
}

// Phones is the typed phone-field set on a contact. The schema evolved
// from a single generic phone column to one column per category; see
// the store's migration 2.
type Phones struct {
	Mobile   Phone
	Landline Phone
	Business Phone
}

// Empty reports whether every phone category is absent.
func (p Phones) Empty() bool {
	return !p.Mobile.Valid && !p.Landline.Valid && !p.Business.Valid
}

// AnyMatch reports whether any populated category in p equals the same
// category in other. Absent categories never match.
func (p Phones) AnyMatch(other Phones) bool {
	if p.Mobile.Valid && other.Mobile.Valid && p.Mobile.Number == other.Mobile.Number {
		return true
	}
	if p.Landline.Valid && other.Landline.Valid && p.Landline.Number == other.Landline.Number {
		return true
	}
	if p.Business.Valid && other.Business.Valid && p.Business.Number == other.Business.Number {
		return true
	}
	return false
}

// Contact is a structured record extracted from a card's text. The ID is
// assigned by the store; CardID scopes the dedupe check.
type Contact struct {
	ID       int64
	CardID   string
	Name     string
	Location string
	Phones   Phones
}

// RawContact holds the fields returned by the extraction service before
// validation. Field names match the response contract the extractor is
// instructed to produce.
type RawContact struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Mobile   string `json:"mobile"`
	Landline string `json:"landline"`
	Business string `json:"business"`
}

// unknownSentinels are values the extraction service emits when a field
// was not actually present in the text. Matched case-sensitively after
// trimming.
var unknownSentinels = map[string]struct{}{
	"N/A":           {},
	"n/a":           {},
	"NA":            {},
	"unknown":       {},
	"Unknown":       {},
	"none":          {},
	"None":          {},
	"not provided":  {},
	"Not provided":  {},
	"not specified": {},
	"Not specified": {},
}

func isSentinel(s string) bool {
	_, ok := unknownSentinels[s]
	return ok
}

// ValidateContact turns a raw extraction result into a Contact, or rejects
// it. Rejection rules, checked in order:
//
//  1. name or location blank after trimming
//  2. every phone category empty or absent
//  3. any populated field equal to an "unknown" sentinel value
//
// Name and location are trimmed but not otherwise transformed; phone
// formatting is the extraction service's responsibility.
func ValidateContact(cardID string, raw RawContact) (*Contact, error) {
	name := strings.TrimSpace(raw.Name)
	location := strings.TrimSpace(raw.Location)

	if name == "" {
		return nil, fmt.Errorf("name is blank")
	}
	if location == "" {
		return nil, fmt.Errorf("location is blank")
	}

	phones := Phones{
		Mobile:   NormalizePhone(raw.Mobile),
		Landline: NormalizePhone(raw.Landline),
		Business: NormalizePhone(raw.Business),
	}
	// Sentinel phones count as absent for the presence rule, but are
	// rejected explicitly below so the reason is logged accurately.
	if phones.Empty() {
		return nil, fmt.Errorf("no phone field populated")
	}

	for field, value := range map[string]string{
		"name":     name,
		"location": location,
		"mobile":   phones.Mobile.Number,
		"landline": phones.Landline.Number,
		"business": phones.Business.Number,
	} {
		if value != "" && isSentinel(value) {
			return nil, fmt.Errorf("%s is an unknown-value sentinel (%q)", field, value)
		}
	}

	return &Contact{
		CardID:   cardID,
		Name:     name,
		Location: location,
		Phones:   phones,
	}, nil
}
