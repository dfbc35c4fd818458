package simd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Jaikrrish5959/Live-in-Labs/pkg/logger"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/utils"
)

var (
	ErrInvalidURL       = errors.New("invalid callback URL")
	ErrMetadataEndpoint = errors.New("callback URL points at a metadata endpoint")
	ErrInternalHost     = errors.New("callback URL points at an internal host")
)

// NotificationPayload is the JSON body POSTed to a job's callback URL once
// the job reaches a terminal status.
type NotificationPayload struct {
	JobID       string           `json:"job_id"`
	Status      models.JobStatus `json:"status"`
	CreatedAt   string           `json:"created_at,omitempty"`
	CompletedAt string           `json:"completed_at,omitempty"`
	Error       string           `json:"error,omitempty"`
	Metrics     *models.Metrics  `json:"metrics,omitempty"`
	Timestamp   int64            `json:"timestamp"`
}

// Notifier delivers job-completion webhooks with retries
type Notifier struct {
	httpClient *http.Client
	maxRetries int
	backoff    utils.BackoffStrategy
}

// NewNotifier creates a notification service
func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 3,
		backoff:    utils.NewExponentialBackoff(1*time.Second, 30*time.Second, 2.0),
	}
}

// validateCallbackURL rejects URLs that could be used to probe internal
// infrastructure. Literal localhost stays allowed for development setups.
func validateCallbackURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing hostname", ErrInvalidURL)
	}
	if host == "169.254.169.254" || strings.HasSuffix(host, ".internal") {
		return ErrMetadataEndpoint
	}
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsUnspecified() || isPrivateIP(ip) {
			return ErrInternalHost
		}
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsPrivate()
}

// Notify sends the job's terminal status to its callback URL, if one was
// registered. It returns immediately; delivery happens in a goroutine.
func (n *Notifier) Notify(job *models.SimulationJob) {
	if job == nil || job.CallbackURL == "" {
		return
	}
	if err := validateCallbackURL(job.CallbackURL); err != nil {
		logger.Warn("refusing to notify", "job_id", job.JobID, "error", err)
		return
	}

	finalURL := strings.ReplaceAll(job.CallbackURL, "{job_id}", job.JobID)

	payload := NotificationPayload{
		JobID:       job.JobID,
		Status:      job.Status,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
		Error:       job.ErrorMessage,
		Timestamp:   time.Now().UTC().UnixMilli(),
	}
	if job.Result != nil {
		payload.Metrics = job.Result.Metrics
	}

	go n.sendNotification(finalURL, job.CallbackSecret, payload)
}

// sendNotification performs the HTTP POST with exponential backoff
func (n *Notifier) sendNotification(callbackURL, callbackSecret string, payload NotificationPayload) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal notification payload",
			"callback_url", callbackURL,
			"job_id", payload.JobID,
			"error", err)
		return
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			delay := n.backoff.NextDelay(attempt - 1)
			logger.Debug("retrying notification",
				"callback_url", callbackURL,
				"job_id", payload.JobID,
				"attempt", attempt,
				"delay", delay)
			time.Sleep(delay)
		}

		req, err := http.NewRequest(http.MethodPost, callbackURL, bytes.NewReader(payloadJSON))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "perimsim/1.0")
		if callbackSecret != "" {
			req.Header.Set("X-Callback-Secret", callbackSecret)
		}

		resp, err := n.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			logger.Warn("notification attempt failed",
				"callback_url", callbackURL,
				"job_id", payload.JobID,
				"attempt", attempt+1,
				"error", err)
			continue
		}

		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		responseBody := string(bodyBytes)
		if len(responseBody) > 200 {
			responseBody = responseBody[:200] + "..."
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("notification sent",
				"job_id", payload.JobID,
				"status", payload.Status,
				"status_code", resp.StatusCode)
			return
		}

		lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		logger.Warn("notification returned non-2xx status",
			"callback_url", callbackURL,
			"job_id", payload.JobID,
			"status_code", resp.StatusCode,
			"response_body", responseBody,
			"attempt", attempt+1)
	}

	logger.Error("failed to send notification after retries",
		"callback_url", callbackURL,
		"job_id", payload.JobID,
		"max_retries", n.maxRetries,
		"last_error", lastErr)
}
