package sessionx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LoadOrGenerateKey loads an Ed25519 signing key from a PKCS8 PEM file,
// generating and persisting a fresh one if the file does not exist yet.
// Keeping the key on disk means sessions survive process restarts.
func LoadOrGenerateKey(path string) (ed25519.PrivateKey, error) {
	path = filepath.Clean(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return generateKeyFile(path)
	}

	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sessionx: read key file: %w", err)
	}
	return ParseKeyPEM(pemBytes)
}

// ParseKeyPEM decodes a PKCS8 PEM block into an Ed25519 private key.
func ParseKeyPEM(pemBytes []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("sessionx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("sessionx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("sessionx: parse PKCS8: %w", err)
	}

	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("sessionx: not an Ed25519 private key")
	}
	return key, nil
}

func generateKeyFile(path string) (ed25519.PrivateKey, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("sessionx: create key dir: %w", err)
	}

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("sessionx: generate key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("sessionx: marshal PKCS8: %w", err)
	}

	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, pemBytes, 0600); err != nil {
		return nil, fmt.Errorf("sessionx: write key file: %w", err)
	}

	return key, nil
}
