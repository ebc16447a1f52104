package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wavHeader() []byte {
	b := []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00")
	return append(b, make([]byte, 32)...)
}

func mp3Header() []byte {
	return append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestScan_FindsAudioOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b_side.wav"), wavHeader())
	writeFile(t, filepath.Join(dir, "album", "a_track.mp3"), mp3Header())
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("liner notes\n"))

	tracks, err := Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "a_track", tracks[0].Title)
	assert.Equal(t, "audio/mpeg", tracks[0].Mime)
	assert.Equal(t, "b_side", tracks[1].Title)
	assert.Equal(t, "audio/wav", tracks[1].Mime)

	sum := sha256.Sum256(wavHeader())
	assert.Equal(t, hex.EncodeToString(sum[:]), tracks[1].ID)
	assert.Equal(t, int64(len(wavHeader())), tracks[1].Size)
}

func TestScan_MissingDir(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestScan_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.wav"), wavHeader())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Scan(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsAudio(t *testing.T) {
	assert.True(t, IsAudio("audio/flac"))
	assert.True(t, IsAudio("application/ogg"))
	assert.False(t, IsAudio("text/plain; charset=utf-8"))
}
