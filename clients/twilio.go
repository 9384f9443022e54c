package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// TwilioClient sends SMS through the Twilio messages endpoint.
type TwilioClient struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
}

// NewTwilioClient creates a Twilio SMS client.
func NewTwilioClient(accountSID, authToken, from string) (*TwilioClient, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, errors.New("twilio: account SID, auth token and from number are required")
	}
	return &TwilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    twilioBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// WithBaseURL points the client at another endpoint (tests).
func (c *TwilioClient) WithBaseURL(baseURL string) *TwilioClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// SendSMS delivers one text message to an E.164 number.
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: failed to build request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("twilio: send failed with status %d: %s", resp.StatusCode, string(payload))
	}
	return nil
}
