// Package models contains domain models and entities.
package models

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/gourl/msid/pkg/msid"
)

// Profile is a named, stored identifier configuration.
type Profile struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Epoch      *time.Time      `json:"epoch,omitempty"`
	Alphabet   string          `json:"alphabet,omitempty"`
	Resolution msid.Resolution `json:"resolution,omitempty"`
	Minted     int64           `json:"minted"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ProfileCreate represents the data needed to create a new profile.
type ProfileCreate struct {
	Name       string
	Epoch      *time.Time
	Alphabet   string
	Resolution msid.Resolution
}

// Validation errors
var (
	ErrEmptyProfileName   = errors.New("profile name cannot be empty")
	ErrInvalidProfileName = errors.New("profile name must be 1-63 lowercase letters, digits, '-' or '_'")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileExists      = errors.New("profile already exists")
)

var profileNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// ValidateProfileName checks name against the profile naming rules.
func ValidateProfileName(name string) error {
	if name == "" {
		return ErrEmptyProfileName
	}
	if !profileNamePattern.MatchString(name) {
		return ErrInvalidProfileName
	}
	return nil
}

// Validate validates the ProfileCreate data.
func (c *ProfileCreate) Validate() error {
	if err := ValidateProfileName(c.Name); err != nil {
		return err
	}
	return c.Config().Validate()
}

// Config returns the codec configuration described by the profile data.
func (c *ProfileCreate) Config() msid.Config {
	return newConfig(c.Epoch, c.Alphabet, c.Resolution)
}

// Config returns the codec configuration stored in the profile.
func (p *Profile) Config() msid.Config {
	return newConfig(p.Epoch, p.Alphabet, p.Resolution)
}

// String returns a short description used in logs and CLI output.
func (p *Profile) String() string {
	epoch := msid.UnixEpoch
	if p.Epoch != nil {
		epoch = p.Epoch.UTC()
	}
	alphabet := p.Alphabet
	if alphabet == "" {
		alphabet = "default"
	}
	resolution := p.Resolution.String()
	if resolution == "" {
		resolution = "auto"
	}
	return fmt.Sprintf("%s (epoch=%s alphabet=%s resolution=%s)",
		p.Name, epoch.Format(time.RFC3339), alphabet, resolution)
}

func newConfig(epoch *time.Time, alphabet string, resolution msid.Resolution) msid.Config {
	cfg := msid.Config{Alphabet: alphabet, Resolution: resolution}
	if epoch != nil {
		cfg.Epoch = *epoch
	}
	return cfg
}
