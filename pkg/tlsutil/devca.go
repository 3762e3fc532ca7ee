package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// Usage selects the extended key usage of an issued certificate.
type Usage int

const (
	ServerUsage Usage = iota
	ClientUsage
)

// KeyPair is a PEM-encoded certificate and its EC private key.
type KeyPair struct {
	CertPEM []byte
	KeyPEM  []byte
}

// Write stores the pair as <name>.pem and <name>-key.pem under dir, readable
// only by the owner.
func (kp KeyPair) Write(dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("tlsutil: mkdir %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".pem"), kp.CertPEM, 0o600); err != nil {
		return fmt.Errorf("tlsutil: write %s certificate: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+"-key.pem"), kp.KeyPEM, 0o600); err != nil {
		return fmt.Errorf("tlsutil: write %s key: %w", name, err)
	}
	return nil
}

// DevCA is an in-memory certificate authority for local clusters and tests.
type DevCA struct {
	KeyPair
	cert     *x509.Certificate
	key      *ecdsa.PrivateKey
	validity time.Duration
	serial   int64
}

// NewDevCA creates a self-signed P-256 CA. Leaf certificates it issues
// share the same validity window.
func NewDevCA(validity time.Duration) (*DevCA, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: generate CA key: %w", err)
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "loan-lifecycle dev CA"},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLenZero:        true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: create CA certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: parse CA certificate: %w", err)
	}
	pair, err := encodePair(der, key)
	if err != nil {
		return nil, err
	}
	return &DevCA{KeyPair: pair, cert: cert, key: key, validity: validity, serial: 1}, nil
}

// Issue signs a leaf certificate for commonName. Hosts become IP or DNS
// subject alternative names.
func (ca *DevCA) Issue(commonName string, hosts []string, usage Usage) (KeyPair, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("tlsutil: generate %s key: %w", commonName, err)
	}

	ca.serial++
	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(ca.serial),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    now.Add(-time.Minute),
		NotAfter:     now.Add(ca.validity),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	if usage == ClientUsage {
		tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		return KeyPair{}, fmt.Errorf("tlsutil: sign %s certificate: %w", commonName, err)
	}
	return encodePair(der, key)
}

// WriteDevBundle mints a CA, a server certificate for hosts and a client
// certificate, and writes ca, server and client pairs to dir.
func WriteDevBundle(dir string, hosts []string, validity time.Duration) error {
	ca, err := NewDevCA(validity)
	if err != nil {
		return err
	}
	server, err := ca.Issue("loan-lifecycle", hosts, ServerUsage)
	if err != nil {
		return err
	}
	client, err := ca.Issue("loan-lifecycle-client", nil, ClientUsage)
	if err != nil {
		return err
	}

	for name, pair := range map[string]KeyPair{"ca": ca.KeyPair, "server": server, "client": client} {
		if err := pair.Write(dir, name); err != nil {
			return err
		}
	}
	return nil
}

func encodePair(der []byte, key *ecdsa.PrivateKey) (KeyPair, error) {
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return KeyPair{}, fmt.Errorf("tlsutil: marshal key: %w", err)
	}
	return KeyPair{
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		KeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
	}, nil
}
