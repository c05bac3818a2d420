package testkit

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"
)

// RSAKeyFixture is one RSA key in every encoding the key-pair tests need.
type RSAKeyFixture struct {
	Key       *rsa.PrivateKey
	PKCS1PEM  string
	PKCS8PEM  string
	PublicPEM string
}

var (
	rsaFixtureOnce sync.Once
	rsaFixture     RSAKeyFixture
	rsaFixtureErr  error
)

// RSAKeyPair returns a process-wide 2048-bit RSA fixture, matching what EC2 KeyPair generates.
func RSAKeyPair(tb testing.TB) RSAKeyFixture {
	tb.Helper()

	rsaFixtureOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			rsaFixtureErr = err
			return
		}
		pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			rsaFixtureErr = err
			return
		}
		spki, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			rsaFixtureErr = err
			return
		}
		rsaFixture = RSAKeyFixture{
			Key:       key,
			PKCS1PEM:  encodePEM("RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key)),
			PKCS8PEM:  encodePEM("PRIVATE KEY", pkcs8),
			PublicPEM: encodePEM("PUBLIC KEY", spki),
		}
	})
	if rsaFixtureErr != nil {
		tb.Fatalf("testkit: generate rsa fixture: %v", rsaFixtureErr)
	}
	return rsaFixture
}

func ECPrivateKeyPEM(tb testing.TB) string {
	tb.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		tb.Fatalf("testkit: generate ec key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		tb.Fatalf("testkit: marshal ec key: %v", err)
	}
	return encodePEM("EC PRIVATE KEY", der)
}

func Ed25519PrivateKeyPEM(tb testing.TB) string {
	tb.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		tb.Fatalf("testkit: generate ed25519 key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		tb.Fatalf("testkit: marshal ed25519 key: %v", err)
	}
	return encodePEM("PRIVATE KEY", der)
}

func encodePEM(blockType string, der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der}))
}
