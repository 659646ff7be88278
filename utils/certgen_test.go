package utils

import (
	"crypto/tls"
	"crypto/x509"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewTLSCertPair(t *testing.T) {
	validUntil := time.Now().Add(time.Hour)
	cert, key, err := NewTLSCertPair("test org", validUntil, []string{"extrahost", "10.9.8.7"})
	require.NoError(t, err)

	keyPair, err := tls.X509KeyPair(cert, key)
	require.NoError(t, err)

	parsed, err := x509.ParseCertificate(keyPair.Certificate[0])
	require.NoError(t, err)

	require.Contains(t, parsed.Subject.Organization, "test org")
	require.Contains(t, parsed.DNSNames, "localhost")
	require.Contains(t, parsed.DNSNames, "extrahost")
	require.True(t, parsed.IsCA)
	require.WithinDuration(t, validUntil, parsed.NotAfter, time.Minute)

	found := false
	for _, ip := range parsed.IPAddresses {
		if ip.String() == "10.9.8.7" {
			found = true
		}
	}
	require.True(t, found)
}
