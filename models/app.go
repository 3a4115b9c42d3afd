// Package models defines the records produced by the Steam client.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// CatalogEntry is one application from the Steam app list.
type CatalogEntry struct {
	AppID uint64 `json:"appid"`
	Name  string `json:"name"`
}

// AppDetail holds the storefront details for a single application. Every
// field but Name is optional because the store omits fields arbitrarily for
// DLC, bundles and region-locked titles.
type AppDetail struct {
	Name                string      `json:"name"`
	AppID               *uint64     `json:"steam_appid,omitempty"`
	RequiredAge         RequiredAge `json:"required_age"`
	IsFree              *bool       `json:"is_free,omitempty"`
	DetailedDescription *string     `json:"detailed_description,omitempty"`
	AboutTheGame        *string     `json:"about_the_game,omitempty"`
	ShortDescription    *string     `json:"short_description,omitempty"`
	Website             *string     `json:"website,omitempty"`
	Metacritic          *Metacritic `json:"metacritic,omitempty"`
}

// Metacritic is the optional review score attached to some applications.
type Metacritic struct {
	Score *uint8  `json:"score,omitempty"`
	URL   *string `json:"url,omitempty"`
}

// RequiredAge is the normalized minimum age of an application. The store
// sends it either as a JSON number or as a quoted number.
type RequiredAge struct {
	Value uint64
	Valid bool
}

// ParseRequiredAge decodes a raw required_age value. A number or a quoted
// decimal yields a valid age, null yields an invalid (absent) one, and
// anything else is an error.
func ParseRequiredAge(raw []byte) (RequiredAge, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return RequiredAge{}, fmt.Errorf("required_age: empty value")
	}

	switch c := trimmed[0]; {
	case c == 'n' && string(trimmed) == "null":
		return RequiredAge{}, nil
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return RequiredAge{}, fmt.Errorf("required_age: %w", err)
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return RequiredAge{}, fmt.Errorf("required_age: %q is not an unsigned integer", s)
		}
		return RequiredAge{Value: v, Valid: true}, nil
	case c == '-' || (c >= '0' && c <= '9'):
		v, err := strconv.ParseUint(string(trimmed), 10, 64)
		if err != nil {
			return RequiredAge{}, fmt.Errorf("required_age: %s is not an unsigned integer", trimmed)
		}
		return RequiredAge{Value: v, Valid: true}, nil
	default:
		return RequiredAge{}, fmt.Errorf("required_age: expected a number or string, got %s", trimmed)
	}
}

// UnmarshalJSON implements json.Unmarshaler via ParseRequiredAge.
func (a *RequiredAge) UnmarshalJSON(data []byte) error {
	parsed, err := ParseRequiredAge(data)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON writes the age as a number, or null when absent.
func (a RequiredAge) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatUint(a.Value, 10)), nil
}

func (a RequiredAge) String() string {
	if !a.Valid {
		return ""
	}
	return strconv.FormatUint(a.Value, 10)
}
