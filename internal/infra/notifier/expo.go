package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

const (
	DefaultExpoEndpoint = "https://exp.host/--/api/v2/push/send"

	defaultExpoTimeout = 15 * time.Second
	maxErrorBodyBytes  = 4 << 10

	expoStatusOK              = "ok"
	expoDeviceNotRegisteredID = "DeviceNotRegistered"
)

type ExpoConfig struct {
	Endpoint    string
	AccessToken string
	// MaxRequestsPerSecond paces outbound requests. Zero disables pacing.
	MaxRequestsPerSecond int
	Timeout              time.Duration
}

type ExpoSender struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

func NewExpoSender(cfg ExpoConfig) *ExpoSender {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultExpoEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultExpoTimeout
	}

	var limiter *rate.Limiter
	if cfg.MaxRequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), cfg.MaxRequestsPerSecond)
	}

	return &ExpoSender{
		endpoint:    endpoint,
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}
}

type expoTicket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details"`
}

type expoResponse struct {
	Data   expoTicket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

func (s *ExpoSender) Send(ctx context.Context, notification domain.Notification) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for send slot: %w", err)
		}
	}

	payload, err := json.Marshal(newPushMessage(notification))
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var expoResp expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&expoResp); err != nil {
		return fmt.Errorf("failed to decode push response: %w", err)
	}

	if len(expoResp.Errors) > 0 {
		return fmt.Errorf("push request rejected: %s: %s", expoResp.Errors[0].Code, expoResp.Errors[0].Message)
	}

	ticket := expoResp.Data
	if ticket.Status != expoStatusOK {
		if ticket.Details.Error == expoDeviceNotRegisteredID {
			return fmt.Errorf("%w: %s", domain.ErrDeviceNotRegistered, ticket.Message)
		}
		return fmt.Errorf("push ticket error: %s: %s", ticket.Details.Error, ticket.Message)
	}

	slog.DebugContext(ctx, "push notification accepted",
		slog.String("task_id", notification.TaskID),
		slog.String("device_id", notification.DeviceID),
		slog.String("ticket_id", ticket.ID),
	)
	return nil
}
