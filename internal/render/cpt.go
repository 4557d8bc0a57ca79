package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// prepareCPT resolves a color table argument. An existing file is copied to a
// temporary file in workDir that the returned cleanup removes. A bare name
// with no extension or path separator is taken as a GMT master CPT.
func prepareCPT(name, workDir string) (string, func(), error) {
	noop := func() {}
	if name == "" {
		return "", noop, fmt.Errorf("no color table given")
	}

	info, err := os.Stat(name)
	if err == nil && !info.IsDir() {
		log.Info().Str("cpt", name).Msg("Using color table file")
		tmp, err := copyToTemp(name, workDir)
		if err != nil {
			return "", noop, err
		}
		return tmp, func() {
			if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
				log.Warn().Err(err).Str("file", tmp).Msg("Failed to remove temporary color table")
			}
		}, nil
	}

	if IsMasterCPT(name) {
		log.Info().Str("cpt", name).Msg("Using GMT master color table")
		return name, noop, nil
	}
	return "", noop, fmt.Errorf("color table not found: %s: %w", name, os.ErrNotExist)
}

// IsMasterCPT reports whether name looks like a built-in GMT CPT such as
// "geo" or "etopo1" rather than a file path.
func IsMasterCPT(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\.`)
}

func copyToTemp(src, workDir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening color table: %w", err)
	}
	defer in.Close()

	out, err := os.CreateTemp(workDir, "stnmap-*.cpt")
	if err != nil {
		return "", fmt.Errorf("creating temporary color table: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("copying color table: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("writing temporary color table: %w", err)
	}
	return out.Name(), nil
}
