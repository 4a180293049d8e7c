// Package linkedin posts generated content to LinkedIn and runs the
// OAuth authorization flow that produces the access token the client
// needs.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/randalmurphal/postflow/internal/model"
)

const (
	defaultAPIBaseURL = "https://api.linkedin.com"
	defaultWebBaseURL = "https://www.linkedin.com"

	ugcPostPrefix   = "urn:li:ugcPost:"
	shareContentKey = "com.linkedin.ugc.ShareContent"
	visibilityKey   = "com.linkedin.ugc.MemberNetworkVisibility"
)

// Client publishes UGC posts for the member who owns the access token.
//
// The publish methods never return an error: every outcome, including
// transport failures, comes back as a model.PublishResult whose
// ErrorMessage tells the user what to do about it.
type Client struct {
	accessToken string
	apiBaseURL  string
	webBaseURL  string
	httpClient  *http.Client
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIBaseURL overrides the LinkedIn API origin.
func WithAPIBaseURL(u string) ClientOption {
	return func(c *Client) { c.apiBaseURL = strings.TrimRight(u, "/") }
}

// WithWebBaseURL overrides the origin used to build post URLs.
func WithWebBaseURL(u string) ClientOption {
	return func(c *Client) { c.webBaseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithClientLogger sets the logger for publish attempts.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a publishing client for the given access token.
// An empty token is allowed at construction; publishing with one
// produces a guidance result instead of an API call.
func NewClient(accessToken string, opts ...ClientOption) *Client {
	c := &Client{
		accessToken: accessToken,
		apiBaseURL:  defaultAPIBaseURL,
		webBaseURL:  defaultWebBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

type shareText struct {
	Text string `json:"text"`
}

type shareMedia struct {
	Status      string     `json:"status"`
	Title       *shareText `json:"title,omitempty"`
	Description *shareText `json:"description,omitempty"`
}

type shareContent struct {
	ShareCommentary    shareText    `json:"shareCommentary"`
	ShareMediaCategory string       `json:"shareMediaCategory"`
	Media              []shareMedia `json:"media,omitempty"`
}

type ugcPostRequest struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]shareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type ugcPostResponse struct {
	ID string `json:"id"`
}

type profileResponse struct {
	ID string `json:"id"`
}

// PostContent publishes text as a plain share (media category NONE).
func (c *Client) PostContent(ctx context.Context, text string) model.PublishResult {
	return c.publish(ctx, shareContent{
		ShareCommentary:    shareText{Text: text},
		ShareMediaCategory: "NONE",
	})
}

// PostArticle publishes an article-shaped share: the body as
// commentary plus the title on the attached media entry.
func (c *Client) PostArticle(ctx context.Context, title, text string) model.PublishResult {
	return c.publish(ctx, shareContent{
		ShareCommentary:    shareText{Text: text},
		ShareMediaCategory: "ARTICLE",
		Media: []shareMedia{{
			Status: "READY",
			Title:  &shareText{Text: title},
		}},
	})
}

func (c *Client) publish(ctx context.Context, content shareContent) model.PublishResult {
	if strings.TrimSpace(c.accessToken) == "" {
		return c.failure("LinkedIn access token is not configured. Run the authorization flow to set LINKEDIN_ACCESS_TOKEN, then try again.")
	}

	author, failMsg := c.memberURN(ctx)
	if failMsg != "" {
		return c.failure(failMsg)
	}

	payload := ugcPostRequest{
		Author:          author,
		LifecycleState:  "PUBLISHED",
		SpecificContent: map[string]shareContent{shareContentKey: content},
		Visibility:      map[string]string{visibilityKey: "PUBLIC"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return c.failure(fmt.Sprintf("encode post payload: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/v2/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return c.failure(fmt.Sprintf("build post request: %v", err))
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.failure(fmt.Sprintf("post to LinkedIn: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.failure(statusGuidance(resp))
	}

	var posted ugcPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&posted); err != nil {
		return c.failure(fmt.Sprintf("decode post response: %v", err))
	}

	postID := strings.TrimPrefix(posted.ID, ugcPostPrefix)
	postURL := fmt.Sprintf("%s/feed/update/%s/", c.webBaseURL, postID)
	c.logger.Info("published to LinkedIn", slog.String("post_id", postID), slog.String("post_url", postURL))

	return model.PublishResult{
		Success: true,
		PostID:  postID,
		PostURL: postURL,
	}
}

// memberURN resolves the author URN for the token's member.
// Returns the URN or a user-facing failure message.
func (c *Client) memberURN(ctx context.Context) (string, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/v2/me", nil)
	if err != nil {
		return "", fmt.Sprintf("build profile request: %v", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Sprintf("fetch LinkedIn profile: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusGuidance(resp)
	}

	var profile profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Sprintf("decode profile response: %v", err)
	}
	if profile.ID == "" {
		return "", "LinkedIn profile response carried no member id"
	}
	return "urn:li:person:" + profile.ID, ""
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
}

func (c *Client) failure(msg string) model.PublishResult {
	c.logger.Warn("LinkedIn publish failed", slog.String("reason", msg))
	return model.PublishResult{Success: false, ErrorMessage: msg}
}

// statusGuidance maps an API error status to a message telling the
// user what to do about it.
func statusGuidance(resp *http.Response) string {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return "LinkedIn rejected the access token (401). The token is missing or expired; re-run the authorization flow to refresh LINKEDIN_ACCESS_TOKEN."
	case http.StatusForbidden:
		return "LinkedIn denied the request (403). Ensure your LinkedIn app has the w_member_social permission and the token was granted that scope."
	case http.StatusTooManyRequests:
		return "LinkedIn rate limit exceeded (429). Wait a few minutes before posting again."
	default:
		return fmt.Sprintf("LinkedIn API returned status %d: %s", resp.StatusCode, bodyExcerpt(resp.Body))
	}
}

// bodyExcerpt reads a short prefix of an error response body.
func bodyExcerpt(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return "no response body"
	}
	return strings.TrimSpace(string(data))
}
