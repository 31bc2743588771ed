package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

var (
	ErrStagehandUnavailable = errors.New("stagehand service unavailable")
	ErrStagehandBadResponse = errors.New("invalid response from stagehand service")
)

// StagehandResult хранит ответ сервиса анализа страниц вместе с разобранными
// служебными полями success и error.
type StagehandResult struct {
	StatusCode int
	Success    bool
	Error      string
	Payload    map[string]interface{}
}

type StagehandClient interface {
	ParseSite(ctx context.Context, targetURL string) (*StagehandResult, error)
}

type stagehandClient struct {
	baseURL string
	client  *resty.Client
}

func NewStagehandClient(baseURL string, timeout time.Duration) StagehandClient {
	return &stagehandClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  resty.New().SetTimeout(timeout),
	}
}

func (c *stagehandClient) ParseSite(ctx context.Context, targetURL string) (*StagehandResult, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{"url": targetURL}).
		Post(c.baseURL + "/parse")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStagehandUnavailable, err)
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return nil, ErrStagehandBadResponse
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrStagehandBadResponse
	}

	return &StagehandResult{
		StatusCode: resp.StatusCode(),
		Success:    gjson.GetBytes(body, "success").Bool(),
		Error:      gjson.GetBytes(body, "error").String(),
		Payload:    payload,
	}, nil
}
