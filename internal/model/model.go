// Package model defines the workflow state and result types shared by
// the content generation stages, the publishing client, and the user
// surfaces (CLI and web).
package model

import (
	"fmt"
	"strings"
)

// Platform identifies the target publishing platform.
type Platform string

// Supported platforms.
const (
	PlatformTwitter  Platform = "twitter"
	PlatformLinkedIn Platform = "linkedin"
	PlatformMedium   Platform = "medium"
)

// Tone identifies the writing tone for generated content.
type Tone string

// Supported tones.
const (
	ToneInformative  Tone = "informative"
	TonePersuasive   Tone = "persuasive"
	ToneCasual       Tone = "casual"
	ToneProfessional Tone = "professional"
	ToneEnthusiastic Tone = "enthusiastic"
)

// Platforms lists the supported platforms in display order.
func Platforms() []Platform {
	return []Platform{PlatformTwitter, PlatformLinkedIn, PlatformMedium}
}

// Tones lists the supported tones in display order.
func Tones() []Tone {
	return []Tone{ToneInformative, TonePersuasive, ToneCasual, ToneProfessional, ToneEnthusiastic}
}

// ParsePlatform converts user input into a Platform.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformTwitter, PlatformLinkedIn, PlatformMedium:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q (valid: twitter, linkedin, medium)", s)
}

// ParseTone converts user input into a Tone.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseTone(s string) (Tone, error) {
	switch t := Tone(strings.ToLower(strings.TrimSpace(s))); t {
	case ToneInformative, TonePersuasive, ToneCasual, ToneProfessional, ToneEnthusiastic:
		return t, nil
	}
	return "", fmt.Errorf("unknown tone %q (valid: informative, persuasive, casual, professional, enthusiastic)", s)
}

// State is the record threaded through the generation pipeline.
// The request fields are set once at the start; each stage returns a
// copy with exactly one result pointer filled in, so the data
// dependency between stages is explicit in the type.
type State struct {
	Topic    string   `json:"topic"`
	Platform Platform `json:"platform"`
	Tone     Tone     `json:"tone"`

	// Research is nil until the research stage completes.
	Research *ResearchResult `json:"research,omitempty"`
	// Content is nil until the content stage completes.
	Content *ContentResult `json:"content,omitempty"`
	// Image is nil until the image stage completes.
	Image *ImageResult `json:"image,omitempty"`
}
