package web

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"

	"github.com/randalmurphal/postflow/internal/model"
	"github.com/randalmurphal/postflow/internal/workflow"
)

// formOption is one entry of a platform or tone select.
type formOption struct {
	Value    string
	Label    string
	Selected bool
}

// formData drives the index page; Error and the retained inputs are
// set when generation was rejected or failed.
type formData struct {
	Error     string
	Topic     string
	Platforms []formOption
	Tones     []formOption
}

// publishView is the publish outcome shown on the result page.
type publishView struct {
	Success      bool
	PostURL      string
	ErrorMessage string
	Already      bool
}

// resultData drives the result page.
type resultData struct {
	ID            string
	Platform      string
	PlatformLabel string
	Tone          string
	Title         string
	ContentHTML   template.HTML
	HasImage      bool
	ImageURL      string
	ImagePrompt   string
	Bullets       []string
	CanPublish    bool
	Publish       *publishView
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", newFormData("", "", "", ""))
}

func (s *Server) handleGenerate(c echo.Context) error {
	topic := strings.TrimSpace(c.FormValue("topic"))
	platformInput := c.FormValue("platform")
	toneInput := c.FormValue("tone")

	if topic == "" {
		return c.Render(http.StatusBadRequest, "index.html",
			newFormData(topic, platformInput, toneInput, "Please enter a topic before generating content."))
	}
	platform, err := model.ParsePlatform(platformInput)
	if err != nil {
		return c.Render(http.StatusBadRequest, "index.html",
			newFormData(topic, platformInput, toneInput, err.Error()))
	}
	tone, err := model.ParseTone(toneInput)
	if err != nil {
		return c.Render(http.StatusBadRequest, "index.html",
			newFormData(topic, platformInput, toneInput, err.Error()))
	}

	state, err := s.gen.Run(c.Request().Context(), workflow.Request{
		Topic:    topic,
		Platform: platform,
		Tone:     tone,
	})
	if err != nil {
		s.logger.Error("content generation failed",
			slog.String("topic", topic),
			slog.String("platform", string(platform)),
			slog.String("error", err.Error()),
		)
		return c.Render(http.StatusInternalServerError, "index.html",
			newFormData(topic, platformInput, toneInput, fmt.Sprintf("Error during content generation: %s", err)))
	}

	id := s.sessions.add(state)
	return c.Redirect(http.StatusSeeOther, "/result/"+id)
}

func (s *Server) handleResult(c echo.Context) error {
	id := c.Param("id")
	state, ok := s.sessions.state(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "result not found")
	}
	return c.Render(http.StatusOK, "result.html", s.resultData(id, state, s.sessions.publishResult(id), false))
}

func (s *Server) handlePublish(c echo.Context) error {
	id := c.Param("id")
	state, ok := s.sessions.state(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "result not found")
	}
	if state.Platform != model.PlatformLinkedIn {
		return echo.NewHTTPError(http.StatusBadRequest, "publishing is only supported for linkedin content")
	}

	if prev := s.sessions.publishResult(id); prev != nil && prev.Success {
		return c.Render(http.StatusOK, "result.html", s.resultData(id, state, prev, true))
	}

	ctx := c.Request().Context()
	var result model.PublishResult
	if state.Content.Title != nil && *state.Content.Title != "" {
		result = s.pub.PostArticle(ctx, *state.Content.Title, state.Content.Content)
	} else {
		result = s.pub.PostContent(ctx, state.Content.Content)
	}

	stored := s.sessions.recordPublish(id, result)
	return c.Render(http.StatusOK, "result.html", s.resultData(id, state, &stored, false))
}

func newFormData(topic, platform, tone, errMsg string) formData {
	d := formData{Error: errMsg, Topic: topic}
	for _, p := range model.Platforms() {
		d.Platforms = append(d.Platforms, formOption{
			Value:    string(p),
			Label:    capitalize(string(p)),
			Selected: string(p) == platform,
		})
	}
	for _, t := range model.Tones() {
		d.Tones = append(d.Tones, formOption{
			Value:    string(t),
			Label:    capitalize(string(t)),
			Selected: string(t) == tone,
		})
	}
	return d
}

func (s *Server) resultData(id string, state model.State, publish *model.PublishResult, already bool) resultData {
	d := resultData{
		ID:            id,
		Platform:      string(state.Platform),
		PlatformLabel: capitalize(string(state.Platform)),
		Tone:          string(state.Tone),
		CanPublish:    state.Platform == model.PlatformLinkedIn,
	}
	if state.Content != nil {
		if state.Content.Title != nil {
			d.Title = *state.Content.Title
		}
		d.ContentHTML = renderMarkdown(state.Content.Content)
	}
	if state.Research != nil {
		d.Bullets = state.Research.BulletPoints
	}
	if img := state.Image; img != nil {
		d.ImagePrompt = img.Prompt
		if !s.images.IsSentinel(img.Path) && fileExists(img.Path) {
			d.HasImage = true
			d.ImageURL = "/images/" + filepath.Base(img.Path)
		}
	}
	if publish != nil {
		d.Publish = &publishView{
			Success:      publish.Success,
			PostURL:      publish.PostURL,
			ErrorMessage: publish.ErrorMessage,
			Already:      already,
		}
	}
	return d
}

// renderMarkdown converts generated markdown to HTML. Goldmark escapes
// raw HTML in the source by default, so the output is safe to embed.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(md) + "</p>")
	}
	return template.HTML(buf.String())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
