package lnurl

import (
	"net/url"
	"strings"
)

// Address is a parsed Lightning Address (user@domain).
type Address struct {
	User   string
	Domain string
	Raw    string
}

// ParseAddress splits s on its first '@'. Both sides must be non-empty and the
// domain must be a bare host (optionally with port).
func ParseAddress(s string) (Address, error) {
	user, domain, found := strings.Cut(s, "@")
	if !found || user == "" || domain == "" {
		return Address{}, newError(ErrInvalidAddress, "expected user@domain", nil)
	}
	if strings.ContainsAny(domain, "@/?# \t\r\n") || strings.ContainsAny(user, " \t\r\n/") {
		return Address{}, newError(ErrInvalidAddress, "expected user@domain", nil)
	}
	return Address{User: user, Domain: domain, Raw: s}, nil
}

// WellKnownURL returns the LUD-16 lookup URL for the address.
func (a Address) WellKnownURL(scheme string) string {
	u := url.URL{
		Scheme: scheme,
		Host:   a.Domain,
		Path:   "/.well-known/lnurlp/" + a.User,
	}
	return u.String()
}

func (a Address) String() string { return a.Raw }
