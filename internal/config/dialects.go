package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Dialect names the delimiter and quote used by a family of files.
type Dialect struct {
	Name      string   `toml:"name"`
	FileTypes []string `toml:"file-types"`
	Delimiter string   `toml:"delimiter"`
	Quote     string   `toml:"quote"`
}

func (d Dialect) DelimiterByte() (byte, bool) { return charOption(d.Delimiter) }

func (d Dialect) QuoteByte() (byte, bool) { return charOption(d.Quote) }

type Dialects struct {
	Dialects []Dialect `toml:"dialect"`
}

// Match returns the first dialect listing the file's extension or base
// name, or nil.
func (d Dialects) Match(path string) *Dialect {
	base := filepath.Base(path)
	baseLower := strings.ToLower(base)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	for i := range d.Dialects {
		dialect := &d.Dialects[i]
		for _, ft := range dialect.FileTypes {
			ftLower := strings.ToLower(ft)
			if ftLower == ext || ftLower == baseLower {
				return dialect
			}
			if strings.HasPrefix(ftLower, ".") && strings.TrimPrefix(ftLower, ".") == ext {
				return dialect
			}
		}
	}
	return nil
}

func LoadDialects() (Dialects, error) {
	path, err := DialectsPath()
	if err != nil {
		return Dialects{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Dialects{}, nil
		}
		return Dialects{}, err
	}

	var cfg Dialects
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Dialects{}, err
	}
	return cfg, nil
}

func DialectsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dialects.toml"), nil
}
