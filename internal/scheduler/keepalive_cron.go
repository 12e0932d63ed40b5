package cron

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const pingTimeout = 10 * time.Second

// Ping issues a GET to url and fails on any non-2xx response.
func Ping(ctx context.Context, client *http.Client, url string) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build keep-alive request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("keep-alive request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("keep-alive request returned status %d", resp.StatusCode)
	}
	return nil
}

// StartKeepAliveCronJobs pings url on schedule so hosted instances that sleep
// when idle stay awake. The caller stops the returned scheduler on shutdown.
func StartKeepAliveCronJobs(schedule, url string) (*cron.Cron, error) {
	c := cron.New()
	client := &http.Client{}

	_, err := c.AddFunc(schedule, func() {
		if err := Ping(context.Background(), client, url); err != nil {
			logrus.WithError(err).WithField("url", url).Error("Keep-alive ping failed")
			return
		}
		logrus.WithField("url", url).Debug("Keep-alive ping sent")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid keep-alive schedule %q: %w", schedule, err)
	}

	c.Start()
	return c, nil
}
