package ssl

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/tech-arch1tect/berth-api/internal/logging"

	"go.uber.org/zap"
)

const (
	CertFileName = "server.crt"
	KeyFileName  = "server.key"
	validFor     = 365 * 24 * time.Hour
)

// CertificateManager keeps a self-signed server certificate under certDir.
type CertificateManager struct {
	certDir string
	logger  *logging.Logger
	now     func() time.Time
}

func NewCertificateManager(certDir string, logger *logging.Logger) *CertificateManager {
	return &CertificateManager{
		certDir: certDir,
		logger:  logger,
		now:     time.Now,
	}
}

// TLSConfig loads the certificate pair, generating a fresh one when it is
// missing or expired.
func (cm *CertificateManager) TLSConfig() (*tls.Config, error) {
	certPath, keyPath, err := cm.EnsureCertificates()
	if err != nil {
		return nil, err
	}

	pair, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate pair: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{pair},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func (cm *CertificateManager) EnsureCertificates() (string, string, error) {
	certPath := filepath.Join(cm.certDir, CertFileName)
	keyPath := filepath.Join(cm.certDir, KeyFileName)

	if cm.certificatesUsable(certPath, keyPath) {
		cm.logger.Info("Loading existing SSL certificates",
			zap.String("cert_path", certPath),
			zap.String("key_path", keyPath),
		)
		return certPath, keyPath, nil
	}

	if err := cm.generateSelfSignedCertificate(certPath, keyPath); err != nil {
		cm.logger.Error("Failed to generate self-signed certificate",
			zap.Error(err),
			zap.String("cert_path", certPath),
		)
		return "", "", fmt.Errorf("failed to generate self-signed certificate: %w", err)
	}

	return certPath, keyPath, nil
}

func (cm *CertificateManager) certificatesUsable(certPath, keyPath string) bool {
	if _, err := os.Stat(keyPath); err != nil {
		cm.logger.Debug("Key file not usable", zap.String("key_path", keyPath), zap.Error(err))
		return false
	}

	raw, err := os.ReadFile(certPath)
	if err != nil {
		cm.logger.Debug("Certificate file not usable", zap.String("cert_path", certPath), zap.Error(err))
		return false
	}

	block, _ := pem.Decode(raw)
	if block == nil || block.Type != "CERTIFICATE" {
		cm.logger.Warn("Certificate file is not PEM encoded", zap.String("cert_path", certPath))
		return false
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		cm.logger.Warn("Certificate file could not be parsed", zap.String("cert_path", certPath), zap.Error(err))
		return false
	}

	if cm.now().After(cert.NotAfter) {
		cm.logger.Warn("Certificate expired, regenerating",
			zap.String("cert_path", certPath),
			zap.Time("not_after", cert.NotAfter),
		)
		return false
	}
	return true
}

func (cm *CertificateManager) generateSelfSignedCertificate(certPath, keyPath string) error {
	cm.logger.Info("Generating self-signed SSL certificate", zap.String("cert_dir", cm.certDir))

	if err := os.MkdirAll(cm.certDir, 0755); err != nil {
		return fmt.Errorf("failed to create certificate directory: %w", err)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := cm.now()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"Berth API"},
			Country:      []string{"KR"},
		},
		NotBefore:   now,
		NotAfter:    now.Add(validFor),
		KeyUsage:    x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:    []string{"localhost", "berth-api"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	privateKeyDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}

	if err := writePEM(certPath, 0644, "CERTIFICATE", certDER); err != nil {
		return err
	}
	if err := writePEM(keyPath, 0600, "PRIVATE KEY", privateKeyDER); err != nil {
		return err
	}

	cm.logger.Info("Successfully generated self-signed SSL certificate",
		zap.String("cert_path", certPath),
		zap.String("key_path", keyPath),
		zap.Time("valid_from", template.NotBefore),
		zap.Time("valid_until", template.NotAfter),
	)
	return nil
}

func writePEM(path string, perm os.FileMode, blockType string, der []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", path, err)
	}
	defer f.Close()

	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
