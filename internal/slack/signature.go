package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// maxSignatureSkew bounds how old a signed request may be before it is
// rejected, per Slack's replay-protection guidance.
const maxSignatureSkew = 5 * time.Minute

// VerifySignature checks the X-Slack-Signature header against the signing
// secret. The signature format is "v0=<hex hmac-sha256 of v0:ts:body>".
func VerifySignature(signingSecret, timestamp string, body []byte, signature string, now time.Time) bool {
	if signingSecret == "" || signature == "" {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	skew := now.Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > maxSignatureSkew {
		return false
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
