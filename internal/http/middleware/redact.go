package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

var (
	// BOLT11 payment requests (mainnet, testnet, signet, regtest).
	invoiceRE = regexp.MustCompile(`(?i)\bln(?:bc|tb|tbs|bcrt)[0-9a-z]{10,}\b`)
	uuidRE    = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	// Lightning Addresses share the email shape. Matches raw and %40-encoded forms.
	addressRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+(?:@|%40)[a-z0-9.\-]+\.[a-z]{2,}\b`)
)

var defaultMaskedHeaders = []string{"authorization", "cookie", "set-cookie", strings.ToLower(HeaderUser)}

// Redact scrubs invoices, UUIDs and Lightning Addresses/emails from s.
// Invoices go first so their bech32 payload never reaches the looser patterns.
func Redact(s string) string {
	if s == "" {
		return s
	}
	s = invoiceRE.ReplaceAllString(s, "[REDACTED:invoice]")
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	return addressRE.ReplaceAllString(s, "[REDACTED:address]")
}

func maskSet(extra []string) map[string]struct{} {
	m := make(map[string]struct{}, len(defaultMaskedHeaders)+len(extra))
	for _, h := range append(defaultMaskedHeaders, extra...) {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			m[h] = struct{}{}
		}
	}
	return m
}

func scrubHeaders(h http.Header, masked map[string]struct{}) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := masked[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = Redact(strings.Join(vv, ", "))
	}
	return out
}
