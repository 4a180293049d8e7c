package model

import (
	"errors"
	"fmt"
	"strings"
)

// Bullet point bounds for research output.
const (
	MinBulletPoints = 5
	MaxBulletPoints = 7
)

// ResearchResult holds the factual bullet points produced by the
// research stage. The list is used exactly as generated: it is never
// padded or truncated to fit the bounds.
type ResearchResult struct {
	BulletPoints []string `json:"bullet_points"`
}

// Validate checks the research generation contract.
func (r ResearchResult) Validate() error {
	n := len(r.BulletPoints)
	if n < MinBulletPoints || n > MaxBulletPoints {
		return fmt.Errorf("expected %d-%d bullet points, got %d", MinBulletPoints, MaxBulletPoints, n)
	}
	for i, b := range r.BulletPoints {
		if strings.TrimSpace(b) == "" {
			return fmt.Errorf("bullet point %d is empty", i+1)
		}
	}
	return nil
}

// ContentResult holds the platform-fitted copy produced by the content
// stage. Title is a pointer so an absent title is distinguishable from
// an empty one; only medium articles carry a title.
type ContentResult struct {
	Title   *string `json:"title"`
	Content string  `json:"content"`
}

// Validate checks the content generation contract.
// Title handling is platform-specific and applied by the content stage,
// not here.
func (c ContentResult) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return errors.New("content is empty")
	}
	return nil
}

// ImageResult holds the illustration produced by the image stage.
// Path points at the rendered PNG, or at the fixed placeholder path
// when rendering failed. Both fields are always set once the stage
// completes.
type ImageResult struct {
	Prompt string `json:"prompt"`
	Path   string `json:"path"`
}

// PublishResult reports the outcome of a publish attempt.
// Exactly one of the two shapes occurs: Success with PostID/PostURL and
// an empty ErrorMessage, or failure with a human-actionable
// ErrorMessage and empty identifiers.
type PublishResult struct {
	Success      bool   `json:"success"`
	PostID       string `json:"post_id"`
	PostURL      string `json:"post_url"`
	ErrorMessage string `json:"error_message"`
}
