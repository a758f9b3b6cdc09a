package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Webhook signature scheme used by the identity provider: each
// delivery carries webhook-id, webhook-timestamp and webhook-signature
// headers, where the signature is base64(HMAC-SHA256(secret,
// "id.timestamp.body")). The signature header may list several
// space-separated "v1,<sig>" candidates during secret rotation.

const webhookTimestampTolerance = 5 * time.Minute

var (
	ErrWebhookSignature = errors.New("invalid webhook signature")
	ErrWebhookTimestamp = errors.New("webhook timestamp outside tolerance")
)

type WebhookVerifier struct {
	key []byte
}

// NewWebhookVerifier accepts the provider's signing secret, either raw
// or in its portal form "whsec_<base64>".
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	if rest, ok := strings.CutPrefix(secret, "whsec_"); ok {
		key, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return nil, errors.New("webhook secret is not valid base64")
		}
		return &WebhookVerifier{key: key}, nil
	}
	return &WebhookVerifier{key: []byte(secret)}, nil
}

func (v *WebhookVerifier) Verify(msgID, timestamp, sigHeader string, body []byte, now time.Time) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrWebhookTimestamp
	}
	diff := now.Sub(time.Unix(ts, 0))
	if diff > webhookTimestampTolerance || diff < -webhookTimestampTolerance {
		return ErrWebhookTimestamp
	}

	expected := v.Sign(msgID, timestamp, body)
	for _, candidate := range strings.Fields(sigHeader) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrWebhookSignature
}

// Sign computes the expected signature for a delivery. Exposed so
// tests can forge valid deliveries.
func (v *WebhookVerifier) Sign(msgID, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
