// AngelaMos | 2026
// client.go

package recordings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voqo-dev/crm-backend/internal/config"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// Recording is one call recording as Twilio reports it.
type Recording struct {
	SID         string `json:"sid"`
	CallSID     string `json:"call_sid"`
	Duration    string `json:"duration"`
	DateCreated string `json:"date_created"`
}

type recordingsPage struct {
	Recordings []Recording `json:"recordings"`
}

// Client lists and streams call recordings. The calling platform keeps
// its recordings on Twilio; the CRM only ever reads them.
type Client interface {
	ListForCall(ctx context.Context, callSID string) ([]Recording, error)
	StreamAudio(ctx context.Context, sid, rangeHeader string) (*AudioStream, error)
}

// AudioStream is a recording's audio body with the headers a proxy
// response needs to preserve. Callers own Body and must close it.
type AudioStream struct {
	Body          io.ReadCloser
	StatusCode    int
	ContentLength string
	ContentRange  string
	AcceptRanges  string
}

type TwilioClient struct {
	accountSID string
	authToken  string
	httpClient *http.Client
}

func NewTwilioClient(cfg config.TwilioConfig) *TwilioClient {
	return &TwilioClient{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TwilioClient) ListForCall(
	ctx context.Context,
	callSID string,
) ([]Recording, error) {
	url := fmt.Sprintf("%s/Accounts/%s/Calls/%s/Recordings.json",
		twilioAPIBase, c.accountSID, callSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build recordings request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch recordings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf(
			"fetch recordings: twilio returned %d: %s",
			resp.StatusCode, string(body),
		)
	}

	var page recordingsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode recordings: %w", err)
	}

	return page.Recordings, nil
}

// StreamAudio fetches the mp3 for a recording, forwarding any Range
// header so the dashboard's audio player can seek.
func (c *TwilioClient) StreamAudio(
	ctx context.Context,
	sid, rangeHeader string,
) (*AudioStream, error) {
	url := fmt.Sprintf("%s/Accounts/%s/Recordings/%s.mp3",
		twilioAPIBase, c.accountSID, sid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build audio request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}

	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusPartialContent {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf(
			"fetch audio: twilio returned %d: %s",
			resp.StatusCode, string(body),
		)
	}

	return &AudioStream{
		Body:          resp.Body,
		StatusCode:    resp.StatusCode,
		ContentLength: resp.Header.Get("Content-Length"),
		ContentRange:  resp.Header.Get("Content-Range"),
		AcceptRanges:  resp.Header.Get("Accept-Ranges"),
	}, nil
}

var _ Client = (*TwilioClient)(nil)
