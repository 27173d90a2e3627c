package keepalive

import (
	"context"
	"net/http"
	"time"

	"dramabox_webapp/internal/logger"
)

const pingInterval = 240 * time.Second

// Start pings the service's own /health endpoint on an interval so free-tier
// hosts do not idle the process out. No-op when baseURL is empty.
func Start(ctx context.Context, baseURL string) {
	if baseURL == "" {
		logger.Warn("keep-alive disabled, base url not set")
		return
	}

	url := baseURL + "/health"
	client := &http.Client{Timeout: 30 * time.Second}
	logger.Info("keep-alive started", "url", url, "interval", pingInterval)

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				resp, err := client.Get(url)
				if err != nil {
					logger.Warn("keep-alive ping failed", "error", err)
					continue
				}
				resp.Body.Close()
				logger.Debug("keep-alive ping", "status", resp.StatusCode)
			}
		}
	}()
}
