package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const fileHeader = "# rfpwatch configuration. Values in config.local.yml override this file;\n" +
	"# DATABASE_URL, PORT, CACHE_ADDRESS and LOG_* override both.\n"

// SaveAtomic writes cfg to path through a synced temp file, keeping a .bak of
// the file it replaces.
func SaveAtomic(path string, cfg Config) error {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	bak := path + ".bak"
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(bak)
		if err := os.Rename(path, bak); err != nil {
			return fmt.Errorf("back up %s: %w", path, err)
		}
	}
	return os.Rename(tmp.Name(), path)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n- ")
}
