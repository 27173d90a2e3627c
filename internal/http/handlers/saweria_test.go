package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(t *testing.T, secret string, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySaweriaSignature(t *testing.T) {
	secret := "shared-secret"
	body := []byte(`{"id":"tx-1","amount_raw":35000,"message":"12345"}`)

	if !verifySaweriaSignature(secret, body, sign(t, secret, body)) {
		t.Fatalf("expected valid signature to verify")
	}
}

func TestVerifySaweriaSignature_UppercaseHex(t *testing.T) {
	secret := "shared-secret"
	body := []byte(`{"id":"tx-1"}`)

	upper := ""
	for _, r := range sign(t, secret, body) {
		if r >= 'a' && r <= 'f' {
			r = r - 'a' + 'A'
		}
		upper += string(r)
	}

	if !verifySaweriaSignature(secret, body, upper) {
		t.Fatalf("expected uppercase hex signature to verify")
	}
}

func TestVerifySaweriaSignature_Invalid(t *testing.T) {
	secret := "shared-secret"
	body := []byte(`{"id":"tx-1"}`)

	if verifySaweriaSignature(secret, body, sign(t, "other-secret", body)) {
		t.Fatalf("expected signature under wrong secret to fail")
	}

	tampered := append([]byte{}, body...)
	tampered = append(tampered, ' ')
	if verifySaweriaSignature(secret, tampered, sign(t, secret, body)) {
		t.Fatalf("expected tampered body to fail")
	}

	if verifySaweriaSignature(secret, body, "") {
		t.Fatalf("expected empty signature to fail")
	}
}
