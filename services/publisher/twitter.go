package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"

	"sjsage522/blogsyndicator/internal/post"
	"sjsage522/blogsyndicator/logger"
	apperrors "sjsage522/blogsyndicator/pkg/errors"
)

// DefaultTwitterEndpoint is the X API v2 base URL
const DefaultTwitterEndpoint = "https://api.x.com/2/"

const (
	tweetMaxWidth = 280
	// links are shortened to t.co URLs of this length
	tweetLinkWidth = 23
)

// TwitterCredentials holds the OAuth 1.0a user context keys
type TwitterCredentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// TwitterPublisher posts statuses to X with the API v2
type TwitterPublisher struct {
	client   *http.Client
	endpoint string
	log      *logger.Logger
}

var _ Publisher = (*TwitterPublisher)(nil)

// NewTwitterPublisher creates a publisher authenticated as the account owning creds.
// The client is built once here and shared by every call.
func NewTwitterPublisher(endpoint string, creds TwitterCredentials) *TwitterPublisher {
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)

	client := config.Client(oauth1.NoContext, token)
	client.Timeout = 30 * time.Second

	return newTwitterPublisher(endpoint, client)
}

func newTwitterPublisher(endpoint string, client *http.Client) *TwitterPublisher {
	if endpoint == "" {
		endpoint = DefaultTwitterEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &TwitterPublisher{
		client:   client,
		endpoint: endpoint,
		log:      logger.ForPublisher("twitter"),
	}
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type userResponse struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

type timelineResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

// StatusText builds the tweet for p, shortening the title so the tweet fits
func StatusText(p post.Post) string {
	maxTitle := tweetMaxWidth - tweetLinkWidth - runewidth.StringWidth(post.StatusSeparator)
	if runewidth.StringWidth(p.Title) > maxTitle {
		p.Title = runewidth.Truncate(p.Title, maxTitle, "…")
	}
	return p.Status()
}

// Publish tweets the post
func (t *TwitterPublisher) Publish(ctx context.Context, p post.Post) error {
	body, err := json.Marshal(tweetRequest{Text: StatusText(p)})
	if err != nil {
		return errors.Wrap(err, "failed to encode tweet")
	}

	var resp tweetResponse
	if err := t.do(ctx, http.MethodPost, "tweets", bytes.NewReader(body), &resp); err != nil {
		return err
	}

	t.log.Debug().Str("id", resp.Data.ID).Str("title", p.Title).Msg("Tweeted")
	return nil
}

// DeleteAll deletes every tweet of the authenticated account, waiting out
// rate limits with policy. It returns the number of deleted tweets.
func (t *TwitterPublisher) DeleteAll(ctx context.Context, policy RetryPolicy) (int, error) {
	var me userResponse
	err := policy.Do(ctx, nil, func() error {
		return t.do(ctx, http.MethodGet, "users/me", nil, &me)
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for {
		var timeline timelineResponse
		path := fmt.Sprintf("users/%s/tweets?max_results=100", me.Data.ID)
		err := policy.Do(ctx, nil, func() error {
			return t.do(ctx, http.MethodGet, path, nil, &timeline)
		})
		if err != nil {
			return deleted, err
		}

		if len(timeline.Data) == 0 {
			return deleted, nil
		}

		for _, tweet := range timeline.Data {
			err := policy.Do(ctx, nil, func() error {
				return t.do(ctx, http.MethodDelete, "tweets/"+tweet.ID, nil, nil)
			})
			if err != nil {
				return deleted, err
			}
			deleted++
			t.log.Debug().Str("id", tweet.ID).Msg("Destroyed tweet")
		}
	}
}

// do sends one API request and decodes a successful answer into out
func (t *TwitterPublisher) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, t.endpoint+path, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return apperrors.NewNetwork("twitter", method+" "+path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.NewRateLimit("twitter", rateLimitReset(resp.Header.Get("x-rate-limit-reset")))
	case resp.StatusCode >= 300:
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		if resp.StatusCode == http.StatusForbidden && strings.Contains(strings.ToLower(apiErr.Detail), "duplicate") {
			return ErrDuplicateContent
		}
		msg := apiErr.Detail
		if msg == "" {
			msg = resp.Status
		}
		return apperrors.NewPublisher("twitter", fmt.Sprintf("%s %s: %s", method, path, msg), nil)
	}

	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, out), "failed to decode response")
}

// rateLimitReset turns the x-rate-limit-reset epoch into a wait
func rateLimitReset(value string) time.Duration {
	epoch, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	if d := time.Until(time.Unix(epoch, 0)); d > 0 {
		return d
	}
	return 0
}

// Close releases idle connections
func (t *TwitterPublisher) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
