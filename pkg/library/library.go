// Package library scans directories for audio files.
package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Track is one playable file.
type Track struct {
	ID    string `json:"id" msgpack:"id"`
	Title string `json:"title" msgpack:"title"`
	Path  string `json:"path" msgpack:"path"`
	Size  int64  `json:"size" msgpack:"size"`
	Mime  string `json:"mime" msgpack:"mime"`
}

// IsAudio reports whether a detected MIME type is playable.
func IsAudio(mime string) bool {
	return strings.HasPrefix(mime, "audio/") || mime == "application/ogg"
}

// Scan walks dir and returns every audio file below it, sorted by path.
// Files that cannot be read are skipped with a warning.
func Scan(ctx context.Context, dir string) ([]Track, error) {
	var tracks []Track
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			slog.Warn("Skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		track, ok, err := inspect(path)
		if err != nil {
			slog.Warn("Skipping file", "path", path, "error", err)
			return nil
		}
		if ok {
			tracks = append(tracks, track)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(tracks, func(a, b Track) int { return strings.Compare(a.Path, b.Path) })
	return tracks, nil
}

func inspect(path string) (Track, bool, error) {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return Track{}, false, err
	}
	if !IsAudio(mime.String()) {
		return Track{}, false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return Track{}, false, err
	}
	sum, err := Checksum(path)
	if err != nil {
		return Track{}, false, err
	}
	name := filepath.Base(path)
	return Track{
		ID:    sum,
		Title: strings.TrimSuffix(name, filepath.Ext(name)),
		Path:  path,
		Size:  info.Size(),
		Mime:  mime.String(),
	}, true, nil
}

// Checksum returns the hex SHA-256 of the file at path.
func Checksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("fail to close file", "error", err.Error())
		}
	}()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
