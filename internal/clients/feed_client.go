package clients

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/mmcdole/gofeed"
)

var (
	ErrFeedFetch = errors.New("feed fetch failed")
	ErrFeedParse = errors.New("feed parse failed")
)

type FeedClient interface {
	Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error)
}

type feedClient struct {
	parser *gofeed.Parser
}

func NewFeedClient() FeedClient {
	parser := gofeed.NewParser()
	parser.UserAgent = "FL-Orders-Aggregator/1.0"
	return &feedClient{parser: parser}
}

func (c *feedClient) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		var urlErr *url.Error
		if errors.As(err, &httpErr) || errors.As(err, &urlErr) {
			return nil, fmt.Errorf("%w: %v", ErrFeedFetch, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrFeedParse, err)
	}
	return feed, nil
}
