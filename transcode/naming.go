package transcode

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxNameAttempts bounds the duplicate counter in UniqueName
const maxNameAttempts = 10000

// OutputName derives the processed file name for input and an effect:
// "<dir>/<stem>_<effect>.wav". Output is always WAV whatever the input
// format.
func OutputName(input, effect string) string {
	dir := filepath.Dir(input)
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, fmt.Sprintf("%s_%s.wav", stem, strings.ToLower(effect)))
}

// UniqueName returns path if nothing exists there, otherwise the first of
// "<stem>_1<ext>", "<stem>_2<ext>", ... that is free.
func UniqueName(path string) (string, error) {
	free, err := isFree(path)
	if err != nil || free {
		return path, err
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for counter := 1; counter <= maxNameAttempts; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", base, counter, ext)
		free, err := isFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no free name for %s after %d attempts", path, maxNameAttempts)
}

func isFree(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		return true, nil
	default:
		return false, fmt.Errorf("cannot check %s: %w", path, err)
	}
}
