package args

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by Overlay.
// FASTTEXT_EPOCH maps to the epoch key, FASTTEXT_LRUPDATERATE to lrupdaterate.
const EnvPrefix = "FASTTEXT_"

// maxConfigFileSize bounds the YAML file read by Overlay.
const maxConfigFileSize = 1024 * 1024

// Overlay merges a YAML file (when path is not empty) and FASTTEXT_*
// environment variables into a. Flags that were set explicitly on fs keep
// their command line value.
//
// Precedence, highest first: explicit flags, environment, YAML, defaults.
func (a *Args) Overlay(path string, fs *pflag.FlagSet) error {
	explicit := map[string]string{}
	if fs != nil {
		fs.Visit(func(f *pflag.Flag) {
			explicit[f.Name] = f.Value.String()
		})
	}

	k := koanf.New(".")
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return errors.Wrap(err, "config file cannot be opened")
		}
		if info.Size() > maxConfigFileSize {
			return errors.Errorf("config file %s is larger than %d bytes", path, maxConfigFileSize)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(err, "config file cannot be read")
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return errors.Wrapf(err, "failed to load config file %s", path)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return errors.Wrap(err, "failed to load environment")
	}

	if err := k.UnmarshalWithConf("", a, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return errors.Wrap(err, "failed to decode configuration")
	}
	if k.Exists("loss") {
		if err := a.Loss.Set(k.String("loss")); err != nil {
			return err
		}
	}

	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return errors.Wrapf(err, "reapply flag %s", name)
		}
	}
	return nil
}
