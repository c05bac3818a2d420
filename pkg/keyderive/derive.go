// Package keyderive turns PEM-encoded private keys into their SPKI public key PEM.
package keyderive

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
)

const (
	blockRSAPrivateKey = "RSA PRIVATE KEY"
	blockPrivateKey    = "PRIVATE KEY"
	blockECPrivateKey  = "EC PRIVATE KEY"
	blockPublicKey     = "PUBLIC KEY"
)

// ErrMalformedKey is returned for any input that is not a usable private key.
var ErrMalformedKey = errors.New("keyderive: malformed private key")

// Deriver derives public key material from private key material.
type Deriver interface {
	DerivePublicKey(privateKeyPEM string) (string, error)
}

// PEM is the default Deriver.
type PEM struct{}

var _ Deriver = PEM{}

func (PEM) DerivePublicKey(privateKeyPEM string) (string, error) {
	return DerivePublicKey(privateKeyPEM)
}

// DerivePublicKey parses the first PEM block of privateKeyPEM and returns the matching public
// key as a "PUBLIC KEY" (SubjectPublicKeyInfo) PEM block.
//
// Accepted blocks are PKCS#1 "RSA PRIVATE KEY", SEC 1 "EC PRIVATE KEY" and PKCS#8 "PRIVATE KEY"
// holding an RSA, ECDSA or Ed25519 key. The result depends only on the key, never on headers or
// surrounding text.
func DerivePublicKey(privateKeyPEM string) (string, error) {
	signer, err := parsePrivateKey(privateKeyPEM)
	if err != nil {
		return "", err
	}

	der, err := x509.MarshalPKIXPublicKey(signer.Public())
	if err != nil {
		return "", fmt.Errorf("%w: marshal public key: %v", ErrMalformedKey, err)
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: blockPublicKey, Bytes: der})), nil
}

func parsePrivateKey(privateKeyPEM string) (crypto.Signer, error) {
	if strings.TrimSpace(privateKeyPEM) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedKey)
	}

	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrMalformedKey)
	}
	//nolint:staticcheck // encrypted PEM is rejected, never decrypted.
	if x509.IsEncryptedPEMBlock(block) {
		return nil, fmt.Errorf("%w: encrypted PEM blocks are not supported", ErrMalformedKey)
	}

	switch block.Type {
	case blockRSAPrivateKey:
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse PKCS#1: %v", ErrMalformedKey, err)
		}
		return key, nil
	case blockECPrivateKey:
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse EC: %v", ErrMalformedKey, err)
		}
		return key, nil
	case blockPrivateKey:
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse PKCS#8: %v", ErrMalformedKey, err)
		}
		switch key := parsed.(type) {
		case *rsa.PrivateKey:
			return key, nil
		case *ecdsa.PrivateKey:
			return key, nil
		case ed25519.PrivateKey:
			return key, nil
		default:
			return nil, fmt.Errorf("%w: unsupported PKCS#8 key type %T", ErrMalformedKey, parsed)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q", ErrMalformedKey, block.Type)
	}
}
