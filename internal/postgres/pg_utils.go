// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

var errInvalidURL = errors.New("invalid URL")

// QuoteIdentifier quotes s for use as a postgres identifier, unless it is
// already quoted.
func QuoteIdentifier(s string) string {
	if isQuotedIdentifier(s) {
		return s
	}
	return pq.QuoteIdentifier(s)
}

func QuoteQualifiedIdentifier(schema, table string) string {
	return QuoteIdentifier(schema) + "." + QuoteIdentifier(table)
}

func isQuotedIdentifier(s string) bool {
	return len(s) > 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)
}

const (
	connectTimeout    = 90 * time.Second
	keepAliveIdle     = 15 * time.Second
	keepAliveInterval = 15 * time.Second
	keepAliveCount    = 9
)

// ParsePoolConfig parses the connection url. Passwords with characters that
// are not valid in a url are escaped before giving up.
func ParsePoolConfig(pgurl string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(pgurl)
	if err != nil {
		urlErr := &url.Error{}
		if !errors.As(err, &urlErr) {
			return nil, fmt.Errorf("parsing postgres connection string: %w", mapError(err))
		}
		escaped, escErr := escapeConnectionURL(pgurl)
		if escErr != nil {
			return nil, fmt.Errorf("escaping postgres connection string: %w", escErr)
		}
		if cfg, err = pgxpool.ParseConfig(escaped); err != nil {
			return nil, fmt.Errorf("parsing postgres connection string: %w", mapError(err))
		}
	}

	cfg.ConnConfig.ConnectTimeout = connectTimeout
	cfg.ConnConfig.DialFunc = keepAliveDialer().DialContext
	return cfg, nil
}

// keepAliveDialer detects a hung connection after about two and a half
// minutes.
func keepAliveDialer() *net.Dialer {
	return &net.Dialer{
		Timeout: connectTimeout,
		KeepAliveConfig: net.KeepAliveConfig{
			Enable:   true,
			Idle:     keepAliveIdle,
			Interval: keepAliveInterval,
			Count:    keepAliveCount,
		},
	}
}

// escapeConnectionURL query escapes the password of a postgres url. The user
// ends at the first colon, the password at the last @, so both colons and @
// are allowed in the password. Passwords that are already escaped are left
// as they are.
func escapeConnectionURL(rawURL string) (string, error) {
	scheme := ""
	for _, s := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(rawURL, s) {
			scheme = s
			break
		}
	}
	if scheme == "" {
		return rawURL, nil
	}

	rest := strings.TrimPrefix(rawURL, scheme)
	at := strings.LastIndex(rest, "@")
	if at <= 0 {
		return "", errInvalidURL
	}
	userInfo, host := rest[:at], rest[at+1:]

	username, password, found := strings.Cut(userInfo, ":")
	if !found {
		return rawURL, nil
	}
	if username == "" {
		return "", errInvalidURL
	}
	if strings.Contains(password, "%") {
		if unescaped, err := url.PathUnescape(password); err == nil {
			password = unescaped
		}
	}

	return scheme + username + ":" + url.QueryEscape(password) + "@" + host, nil
}
