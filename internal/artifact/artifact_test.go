package artifact_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/wapuda/tg-grabber/internal/artifact"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, make([]byte, size), 0o644))
	return p
}

func TestSelectLargest(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.part", 10)
	big := writeFile(t, dir, "b.mp4", 500)
	writeFile(t, dir, "c.jpg", 3)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub"), "huge.bin", 5000)

	a, err := artifact.Select(dir)
	require.NoError(t, err)
	require.Equal(t, big, a.Path)
	require.EqualValues(t, 500, a.Size)
	require.Equal(t, "b.mp4", a.Name())
}

func TestSelectEmpty(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "only-a-dir"), 0o755))

	_, err := artifact.Select(dir)
	require.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestSelectTieKeepsFirst(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	first := writeFile(t, dir, "a.mp4", 100)
	writeFile(t, dir, "b.mp4", 100)

	a, err := artifact.Select(dir)
	require.NoError(t, err)
	require.Equal(t, first, a.Path)
}

func TestSelectMissingDir(t *testing.T) {
	t.Parallel()
	_, err := artifact.Select(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	require.NotErrorIs(t, err, artifact.ErrNotFound)
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()
	var testCases = []struct {
		scenario string
		in       string
		max      int
		want     string
	}{
		{"plain", "clip-abc123.mp4", 120, "clip-abc123.mp4"},
		{"spaces and slashes", "My Video / part: 1?-xyz.mp4", 120, "My_Video_part_1_-xyz.mp4"},
		{"unicode kept", "Привет мир-id.mp4", 120, "Привет_мир-id.mp4"},
		{"hidden", "..hidden.mp4", 120, "hidden.mp4"},
		{"empty stem", "???.webm", 120, "media.webm"},
		{"truncated keeps ext", strings.Repeat("a", 300) + ".mp4", 20, strings.Repeat("a", 16) + ".mp4"},
		{"silly ext dropped", "clip." + strings.Repeat("x", 40), 120, "clip"},
	}
	for _, tt := range testCases {
		t.Run(tt.scenario, func(t *testing.T) {
			got := artifact.SanitizeName(tt.in, tt.max)
			require.Equal(t, tt.want, got)
			require.LessOrEqual(t, len(got), tt.max)
		})
	}
}

func TestSanitizeNameRuneBoundary(t *testing.T) {
	t.Parallel()
	got := artifact.SanitizeName(strings.Repeat("ж", 50)+".mp4", 25)
	require.True(t, utf8.ValidString(got))
	require.LessOrEqual(t, len(got), 25)
	require.True(t, strings.HasSuffix(got, ".mp4"))
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := writeFile(t, dir, "bad name: 1.mp4", 42)

	a, err := artifact.Normalize(artifact.Artifact{Path: p, Size: 42}, 120)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "bad_name_1.mp4"), a.Path)
	require.EqualValues(t, 42, a.Size)
	require.FileExists(t, a.Path)
	require.NoFileExists(t, p)

	same, err := artifact.Normalize(a, 120)
	require.NoError(t, err)
	require.Equal(t, a, same)
}
