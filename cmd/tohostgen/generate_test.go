package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const capabilitiesSrc = `package player

// PlayerControl drives the audio backend.
type PlayerControl interface {
	Play(path string) error
}

type (
	// Toast shows short messages.
	Toast interface {
		Show(message string)
	}
	Volume int
)
`

func writePackage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "capabilities.go"), []byte(capabilitiesSrc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored_test.go"), []byte("package player_test\n"), 0o644))
	return dir
}

func TestGenerate_WritesAccessors(t *testing.T) {
	dir := writePackage(t)

	src, err := Generate(Options{Dir: dir, Types: []string{"Toast", "PlayerControl"}})
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "// Code generated by tohostgen. DO NOT EDIT.")
	assert.Contains(t, out, "package player")
	assert.Contains(t, out, "func PlayerControlOf(s tohost.Source) PlayerControl {")
	assert.Contains(t, out, "return tohost.Of[Toast](s)")
	assert.Contains(t, out, "// PlayerControl drives the audio backend.")
	assert.Contains(t, out, "// Toast shows short messages.")
	assert.Less(t, strings.Index(out, "PlayerControlOf"), strings.Index(out, "ToastOf"), "accessors are sorted")
}

func TestGenerate_Errors(t *testing.T) {
	dir := writePackage(t)

	tests := []struct {
		name string
		opts Options
	}{
		{name: "no types", opts: Options{Dir: dir}},
		{name: "unknown interface", opts: Options{Dir: dir, Types: []string{"Router"}}},
		{name: "not an interface", opts: Options{Dir: dir, Types: []string{"Volume"}}},
		{name: "empty dir", opts: Options{Dir: t.TempDir(), Types: []string{"Toast"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestGenerate_PackageOverride(t *testing.T) {
	dir := writePackage(t)
	src, err := Generate(Options{Dir: dir, Types: []string{"Toast"}, Package: "hosts"})
	require.NoError(t, err)
	assert.Contains(t, string(src), "package hosts")
}
