package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

const certRenewWindow = 30 * 24 * time.Hour

// CertificateGenerator creates a self-signed certificate and key pair in PEM form
type CertificateGenerator interface {
	GenerateTLSCertificate(hostname string) (certPEM, keyPEM []byte, err error)
}

// EnsureTLSCertificates makes sure cfg.HTTP points at a key pair when TLS is on.
// Without configured paths the pair lives in <dataDir>/tls and is reissued
// self-signed whenever it is missing, close to expiry or issued for another
// host. A configured pair is only generated when absent; otherwise problems
// are logged and the files are left alone.
func EnsureTLSCertificates(cfg *Config, generator CertificateGenerator, logger outbound.Logger) error {
	if !cfg.HTTP.TLS {
		return nil
	}

	managed := cfg.HTTP.CertFile == "" || cfg.HTTP.KeyFile == ""
	if managed {
		dir := filepath.Join(cfg.General.DataDir, "tls")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create tls directory: %w", err)
		}
		cfg.HTTP.CertFile = filepath.Join(dir, "server.crt")
		cfg.HTTP.KeyFile = filepath.Join(dir, "server.key")
	}

	host := certificateHost(cfg)

	err := checkKeyPair(cfg.HTTP.CertFile, cfg.HTTP.KeyFile, host, time.Now())
	if err == nil {
		logger.Info("Using existing TLS certificate", "certFile", cfg.HTTP.CertFile, "host", host)
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		if !managed {
			logger.Warn("Configured TLS certificate has problems", "certFile", cfg.HTTP.CertFile, "reason", err)
			return nil
		}
		logger.Warn("Replacing TLS certificate", "certFile", cfg.HTTP.CertFile, "reason", err)
	}

	certPEM, keyPEM, err := generator.GenerateTLSCertificate(host)
	if err != nil {
		return fmt.Errorf("generate tls certificate for %s: %w", host, err)
	}
	if err := os.WriteFile(cfg.HTTP.KeyFile, keyPEM, 0600); err != nil {
		return fmt.Errorf("write tls key: %w", err)
	}
	if err := os.WriteFile(cfg.HTTP.CertFile, certPEM, 0644); err != nil {
		return fmt.Errorf("write tls certificate: %w", err)
	}

	logger.Info("Self-signed TLS certificate issued", "certFile", cfg.HTTP.CertFile, "host", host)
	return nil
}

// certificateHost is the name Telegram will dial: the webhook host when one is
// configured, else the bind address.
func certificateHost(cfg *Config) string {
	if u, err := url.Parse(cfg.Telegram.WebhookURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	if cfg.HTTP.Address != "" && cfg.HTTP.Address != "0.0.0.0" {
		return cfg.HTTP.Address
	}
	return "localhost"
}

func checkKeyPair(certPath, keyPath, host string, now time.Time) error {
	pair, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return err
	}

	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return err
	}
	if leaf.NotAfter.Sub(now) < certRenewWindow {
		return fmt.Errorf("certificate expires %s", leaf.NotAfter.Format(time.DateOnly))
	}
	return leaf.VerifyHostname(host)
}
