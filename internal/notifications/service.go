package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"animatch/internal/config"
)

const userAgent = "animatch/0.1"

// ImportCounts is the outcome of one import as reported to the user.
type ImportCounts struct {
	Added      int
	Duplicates int
	Review     int
	NoMatch    int
	Failed     int
}

// Service is the notification surface used by the CLI.
type Service interface {
	NotifyImportCompleted(ctx context.Context, counts ImportCounts, duration time.Duration) error
	NotifyImportFailed(ctx context.Context, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := cfg.NotificationTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyImportCompleted(ctx context.Context, counts ImportCounts, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Added %d", counts.Added)
	if counts.Duplicates > 0 {
		fmt.Fprintf(&b, ", %d already listed", counts.Duplicates)
	}
	fmt.Fprintf(&b, " in %s", duration)
	waiting := counts.Review + counts.NoMatch
	if waiting > 0 {
		fmt.Fprintf(&b, "\n%d waiting for review (%d without a match)", waiting, counts.NoMatch)
	}
	if counts.Failed > 0 {
		fmt.Fprintf(&b, "\n%d lines failed", counts.Failed)
	}

	data := payload{
		title:   "animatch - Import Complete",
		message: b.String(),
		tags:    []string{"animatch", "import", "completed"},
	}
	if waiting > 0 {
		data.title = "animatch - Import Needs Review"
		data.tags = []string{"animatch", "import", "review"}
	}
	if counts.Failed > 0 {
		data.title = "animatch - Import Complete (with errors)"
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyImportFailed(ctx context.Context, err error) error {
	message := "unknown error"
	if err != nil {
		message = strings.TrimSpace(err.Error())
	}
	return n.send(ctx, payload{
		title:    "animatch - Import Failed",
		message:  "Import stopped: " + message,
		tags:     []string{"animatch", "import", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "animatch - Test",
		message:  "Notification system test",
		tags:     []string{"animatch", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyImportCompleted(context.Context, ImportCounts, time.Duration) error {
	return nil
}
func (noopService) NotifyImportFailed(context.Context, error) error { return nil }
func (noopService) TestNotification(context.Context) error          { return nil }
