package ssl

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/berth-api/internal/logging"
)

func TestEnsureCertificatesGeneratesOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ssl")
	cm := NewCertificateManager(dir, logging.NewNopLogger())

	certPath, keyPath, err := cm.EnsureCertificates()
	require.NoError(t, err)
	assert.FileExists(t, certPath)
	assert.FileExists(t, keyPath)

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	first, err := os.ReadFile(certPath)
	require.NoError(t, err)

	_, _, err = cm.EnsureCertificates()
	require.NoError(t, err)
	second, err := os.ReadFile(certPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExpiredCertificateIsRegenerated(t *testing.T) {
	dir := t.TempDir()
	cm := NewCertificateManager(dir, logging.NewNopLogger())
	cm.now = func() time.Time { return time.Now().Add(-2 * validFor) }

	certPath, _, err := cm.EnsureCertificates()
	require.NoError(t, err)
	stale, err := os.ReadFile(certPath)
	require.NoError(t, err)

	cm.now = time.Now
	_, _, err = cm.EnsureCertificates()
	require.NoError(t, err)
	fresh, err := os.ReadFile(certPath)
	require.NoError(t, err)
	assert.NotEqual(t, stale, fresh)
}

func TestTLSConfig(t *testing.T) {
	cm := NewCertificateManager(t.TempDir(), logging.NewNopLogger())

	cfg, err := cm.TLSConfig()
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
}

func TestGarbageCertificateIsReplaced(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CertFileName), []byte("junk"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyFileName), []byte("junk"), 0600))

	cm := NewCertificateManager(dir, logging.NewNopLogger())
	_, err := cm.TLSConfig()
	assert.NoError(t, err)
}
