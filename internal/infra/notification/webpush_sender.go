// Package notification delivers browser push notifications over the Web Push protocol.
package notification

import (
	"context"
	"io"
	"net/http"
	"strings"

	"qimat/config"
	"qimat/internal/domain/entity"
	"qimat/internal/domain/service"
	"qimat/internal/errors"

	"github.com/SherClockHolmes/webpush-go"
)

// maxErrorBody bounds how much of a failed push service response is kept for logging.
const maxErrorBody = 512

type webPushSender struct {
	publicKey  string
	privateKey string
	subject    string
	ttl        int
	client     *http.Client
}

// NewWebPushSender creates a VAPID-signed Web Push sender.
// It fails with service.ErrPushNotConfigured when any VAPID setting is blank.
func NewWebPushSender(cfg *config.WebPushConfig, client *http.Client) (service.PushSender, error) {
	if !cfg.Enabled() {
		return nil, service.ErrPushNotConfigured
	}

	if client == nil {
		client = &http.Client{}
	}

	return &webPushSender{
		publicKey:  strings.TrimSpace(cfg.PublicKey),
		privateKey: strings.TrimSpace(cfg.PrivateKey),
		subject:    strings.TrimSpace(cfg.Subject),
		ttl:        cfg.TTL,
		client:     client,
	}, nil
}

// PublicKey returns the VAPID application server key.
func (s *webPushSender) PublicKey() string {
	return s.publicKey
}

// Send encrypts payload for the subscription and posts it to the push service.
// 404 and 410 responses wrap service.ErrSubscriptionGone.
func (s *webPushSender) Send(ctx context.Context, subscription *entity.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: subscription.Endpoint,
		Keys: webpush.Keys{
			P256dh: subscription.P256dh,
			Auth:   subscription.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return errors.Wrap(err, "failed to send web push")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return errors.Wrapf(service.ErrSubscriptionGone, "push service responded %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return errors.Errorf("push service responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
