package client

import (
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Wa4h1h/go-xftp/pkg/server"
	"github.com/Wa4h1h/go-xftp/pkg/storage"
	"github.com/Wa4h1h/go-xftp/pkg/types"
	"github.com/Wa4h1h/go-xftp/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startTestServer(t *testing.T, dir string) string {
	t.Helper()

	l := zap.NewNop().Sugar()
	s := server.NewServer(l, "0", storage.NewDir(l, dir), 1, 1, 3, false)

	go func() {
		if err := s.ListenAndServe(); err != nil {
			l.Error(err.Error())
		}
	}()

	require.Eventually(t, func() bool { return s.Addr() != nil },
		time.Second, 10*time.Millisecond)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	// the server binds the wildcard address; target loopback
	udpAddr, ok := s.Addr().(*net.UDPAddr)
	require.True(t, ok)

	return fmt.Sprintf("127.0.0.1:%d", udpAddr.Port)
}

// chdirTemp moves the test into its own directory so the client's
// local files do not collide with the server's store.
func chdirTemp(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})

	return dir
}

func connectedClient(t *testing.T, addr string) Connector {
	t.Helper()

	c := NewClient(zap.NewNop().Sugar(), 3)
	require.NoError(t, c.Connect(addr))

	t.Cleanup(func() {
		require.NoError(t, c.Close())
	})

	return c
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()

	b := make([]byte, n)

	_, err := rand.Read(b)
	require.NoError(t, err)

	return b
}

func TestPutPersistsFileAndBackup(t *testing.T) {
	serverDir := t.TempDir()
	addr := startTestServer(t, serverDir)
	localDir := chdirTemp(t)

	content := randomBytes(t, 1000)
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "up.bin"), content, 0o644))

	c := connectedClient(t, addr)

	require.NoError(t, c.Put("up.bin"))

	stored, err := os.ReadFile(filepath.Join(serverDir, "up.bin"))
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	backup, err := os.ReadFile(filepath.Join(serverDir, "backup", "up.bin"))
	require.NoError(t, err)
	assert.Equal(t, content, backup)
}

func TestPutExactMultipleOfBlockSize(t *testing.T) {
	serverDir := t.TempDir()
	addr := startTestServer(t, serverDir)
	localDir := chdirTemp(t)

	content := randomBytes(t, 1024)
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "even.bin"), content, 0o644))

	c := connectedClient(t, addr)

	require.NoError(t, c.Put("even.bin"))

	stored, err := os.ReadFile(filepath.Join(serverDir, "even.bin"))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestGetDownloadsFile(t *testing.T) {
	serverDir := t.TempDir()
	addr := startTestServer(t, serverDir)
	localDir := chdirTemp(t)

	content := randomBytes(t, 1500)
	require.NoError(t, os.WriteFile(filepath.Join(serverDir, "down.bin"), content, 0o644))

	c := connectedClient(t, addr)

	require.NoError(t, c.Get("down.bin"))

	fetched, err := os.ReadFile(filepath.Join(localDir, "down.bin"))
	require.NoError(t, err)
	assert.Equal(t, content, fetched)
}

func TestGetEmptyFile(t *testing.T) {
	serverDir := t.TempDir()
	addr := startTestServer(t, serverDir)
	localDir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(serverDir, "empty.bin"), nil, 0o644))

	c := connectedClient(t, addr)

	require.NoError(t, c.Get("empty.bin"))

	fetched, err := os.ReadFile(filepath.Join(localDir, "empty.bin"))
	require.NoError(t, err)
	assert.Empty(t, fetched)
}

func TestGetMissingFile(t *testing.T) {
	addr := startTestServer(t, t.TempDir())
	localDir := chdirTemp(t)

	c := connectedClient(t, addr)

	err := c.Get("missing.bin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File not found")
	// a failed download must not leave an empty local file behind
	assert.NoFileExists(t, filepath.Join(localDir, "missing.bin"))
}

func TestPutRejectsFileExceedingBlockSpace(t *testing.T) {
	localDir := chdirTemp(t)

	// one byte past 65535 full blocks needs a 65536th block number
	f, err := os.Create(filepath.Join(localDir, "huge.bin"))
	require.NoError(t, err)
	require.NoError(t, f.Truncate(int64(types.MaxBlocks)*types.MaxPayloadSize+1))
	require.NoError(t, f.Close())

	// the size guard fires before any datagram leaves the client
	c := connectedClient(t, "127.0.0.1:9")

	require.ErrorIs(t, c.Put("huge.bin"), utils.ErrFileTooLarge)
}

func TestDeleteRemoteFile(t *testing.T) {
	serverDir := t.TempDir()
	addr := startTestServer(t, serverDir)
	chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(serverDir, "doomed.bin"), []byte("x"), 0o644))

	c := connectedClient(t, addr)

	require.NoError(t, c.Delete("doomed.bin"))
	assert.NoFileExists(t, filepath.Join(serverDir, "doomed.bin"))

	err := c.Delete("doomed.bin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to delete file")
}

func TestPingAliveServer(t *testing.T) {
	addr := startTestServer(t, t.TempDir())

	c := connectedClient(t, addr)

	require.NoError(t, c.Ping())
}

func TestOperationsRequireConnect(t *testing.T) {
	c := NewClient(zap.NewNop().Sugar(), 3)

	require.Error(t, c.Get("a"))
	require.Error(t, c.Put("a"))
	require.Error(t, c.Delete("a"))
	require.Error(t, c.Ping())
}
