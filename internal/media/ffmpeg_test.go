package media

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFFmpeg writes a shell script that copies the -i input to the last argument.
func fakeFFmpeg(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestFFmpeg_ToWAV(t *testing.T) {
	path := fakeFFmpeg(t, `#!/bin/sh
in=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-i" ]; then in="$a"; fi
  prev="$a"
  last="$a"
done
{ printf 'WAV:'; cat "$in"; } > "$last"
`)

	wav, err := NewFFmpeg(path).ToWAV(context.Background(), []byte("ogg-data"))
	require.NoError(t, err)
	assert.Equal(t, "WAV:ogg-data", string(wav))
}

func TestFFmpeg_NonZeroExit(t *testing.T) {
	path := fakeFFmpeg(t, "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n")

	_, err := NewFFmpeg(path).ToWAV(context.Background(), []byte("not-ogg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestFFmpeg_MissingExecutable(t *testing.T) {
	_, err := NewFFmpeg(filepath.Join(t.TempDir(), "no-such-ffmpeg")).ToWAV(context.Background(), []byte("ogg"))
	assert.Error(t, err)
}
