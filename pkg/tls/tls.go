// SPDX-License-Identifier: Apache-2.0

package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
)

// Config describes the TLS setup of the connections to the search backend.
type Config struct {
	Enabled bool
	// CACertFile is the PEM CA bundle used to verify the server. The system
	// pool is used when empty.
	CACertFile string
	// ClientCertFile and ClientKeyFile enable mutual TLS when both are set.
	ClientCertFile string
	ClientKeyFile  string
	// InsecureSkipVerify disables server certificate verification. Only meant
	// for local clusters with self signed certificates.
	InsecureSkipVerify bool
}

var (
	errIncompleteKeyPair = errors.New("both a client certificate and key file must be provided")
	errInvalidCACert     = errors.New("no valid PEM certificate found in CA file")
)

// ClientConfig returns the crypto/tls configuration, or nil when TLS is not
// enabled.
func (c *Config) ClientConfig() (*tls.Config, error) {
	if c == nil || !c.Enabled {
		return nil, nil
	}

	rootCAs, err := c.rootCAs()
	if err != nil {
		return nil, err
	}

	certificates, err := c.certificates()
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		RootCAs:            rootCAs,
		Certificates:       certificates,
		InsecureSkipVerify: c.InsecureSkipVerify, //nolint:gosec
	}, nil
}

// Transport returns an http transport using the TLS configuration. Without
// TLS it returns the default transport.
func (c *Config) Transport() (http.RoundTripper, error) {
	tlsCfg, err := c.ClientConfig()
	if err != nil {
		return nil, err
	}
	if tlsCfg == nil {
		return http.DefaultTransport, nil
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg
	return transport, nil
}

func (c *Config) rootCAs() (*x509.CertPool, error) {
	if c.CACertFile == "" {
		return x509.SystemCertPool()
	}
	pem, err := os.ReadFile(c.CACertFile)
	if err != nil {
		return nil, fmt.Errorf("reading CA certificate file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errInvalidCACert
	}
	return pool, nil
}

func (c *Config) certificates() ([]tls.Certificate, error) {
	switch {
	case c.ClientCertFile == "" && c.ClientKeyFile == "":
		return nil, nil
	case c.ClientCertFile == "" || c.ClientKeyFile == "":
		return nil, errIncompleteKeyPair
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCertFile, c.ClientKeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading client key pair: %w", err)
	}
	return []tls.Certificate{cert}, nil
}
