package publisher

import (
	"context"
	"errors"

	"github.com/slack-go/slack"

	"sjsage522/blogsyndicator/internal/post"
	"sjsage522/blogsyndicator/logger"
	apperrors "sjsage522/blogsyndicator/pkg/errors"
)

// SlackPublisher posts new blog posts to a Slack channel
type SlackPublisher struct {
	client  *slack.Client
	channel string
	log     *logger.Logger
}

var _ Publisher = (*SlackPublisher)(nil)

// NewSlackPublisher creates a Slack publisher. apiURL overrides the Slack API
// base URL when non-empty.
func NewSlackPublisher(token, channel, apiURL string) *SlackPublisher {
	var opts []slack.Option
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}

	return &SlackPublisher{
		client:  slack.New(token, opts...),
		channel: channel,
		log:     logger.ForPublisher("slack"),
	}
}

// Publish posts the status text of p
func (s *SlackPublisher) Publish(ctx context.Context, p post.Post) error {
	_, ts, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(p.Status(), false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		var rateLimited *slack.RateLimitedError
		if errors.As(err, &rateLimited) {
			return apperrors.NewRateLimit("slack", rateLimited.RetryAfter)
		}
		return apperrors.NewPublisher("slack", "failed to post message", err)
	}

	s.log.Debug().Str("channel", s.channel).Str("ts", ts).Str("title", p.Title).Msg("Posted to Slack")
	return nil
}

// Close is a no-op; the Slack client holds no connection
func (s *SlackPublisher) Close() error {
	return nil
}
