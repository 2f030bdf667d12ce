package notifications

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pyLexxDramma/deribit-client/internal/httputil"
)

// Sender posts operational alerts (ingestion failures, lifecycle events) to a
// chat webhook. With no URL configured it only logs, so callers never need to
// check Enabled before Send.
type Sender struct {
	webhookURL  string
	serviceName string
	httpClient  *http.Client
}

func NewSender(webhookURL, serviceName string) *Sender {
	if serviceName == "" {
		serviceName = "deribit-client"
	}
	return &Sender{
		webhookURL:  webhookURL,
		serviceName: serviceName,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Sender) Send(msg string) {
	formatted := fmt.Sprintf("[%s] %s", s.serviceName, msg)
	log.Info().Msg(formatted)

	if s.webhookURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httputil.PostJSON(ctx, s.httpClient, s.webhookURL, s.formatPayload(formatted)); err != nil {
		log.Error().Err(err).Msg("failed to send webhook notification")
	}
}

func (s *Sender) formatPayload(msg string) map[string]string {
	if strings.Contains(s.webhookURL, "discord") {
		return map[string]string{
			"content":  msg,
			"username": s.serviceName,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("`%s`", msg),
		"username": s.serviceName,
	}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}
