package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"
)

func signBody(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := []byte("command=%2Frefund&text=ch_abc")
	secret := "8f742231b10e8888abcd99yyyzzz85a5"

	if !VerifySignature(secret, ts, body, signBody(secret, ts, body), now) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	secret := "secret"
	sig := signBody(secret, ts, []byte("original"))

	if VerifySignature(secret, ts, []byte("tampered"), sig, now) {
		t.Fatal("expected tampered body to fail")
	}
	if VerifySignature("other-secret", ts, []byte("original"), sig, now) {
		t.Fatal("expected wrong secret to fail")
	}
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	stale := strconv.FormatInt(now.Add(-10*time.Minute).Unix(), 10)
	body := []byte("payload")
	secret := "secret"

	if VerifySignature(secret, stale, body, signBody(secret, stale, body), now) {
		t.Fatal("expected stale timestamp to fail")
	}
}

func TestVerifySignatureRejectsGarbage(t *testing.T) {
	now := time.Unix(1700000000, 0)
	if VerifySignature("secret", "not-a-number", []byte("x"), "v0=00", now) {
		t.Fatal("expected bad timestamp to fail")
	}
	if VerifySignature("", "1700000000", []byte("x"), "v0=00", now) {
		t.Fatal("expected empty secret to fail")
	}
	if VerifySignature("secret", "1700000000", []byte("x"), "", now) {
		t.Fatal("expected empty signature to fail")
	}
}
