// Package config reads settings from defaults, an optional YAML file and
// QURAN_* environment variables, in increasing priority.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "QURAN"

type StateBackend string

const (
	StateFile   StateBackend = "file"
	StateSQLite StateBackend = "sqlite"
)

type (
	Config struct {
		Data
		Tables
		Audio
		Links
		State
		Log
		UI
	}

	Data struct {
		Dir        string // tables on disk; takes precedence over URL
		URL        string // base URL serving the tables
		BundleURL  string // zip of the tables, used by fetch
		BundleName string // cache entry the bundle is stored under
		CacheDir   string // empty picks ~/.cache/quran-tui/data
	}
	Tables struct {
		Chapters   string
		Verses     string
		Words      string
		Glosses    string
		Morphology string
		Pages      string
		Roots      string
	}
	Audio struct {
		WordBase  string
		VerseBase string
		Player    string // command line, URL appended
	}
	Links struct {
		ExternalVerseBase string
	}
	State struct {
		Backend StateBackend
		Path    string // empty picks a file under the user config dir
	}
	Log struct {
		Level  string
		Format string
		File   string // empty discards logs
	}
	UI struct {
		Theme           string
		StripDiacritics bool
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", "")
	v.SetDefault("data.url", "")
	v.SetDefault("data.bundle_url", "")
	v.SetDefault("data.bundle_name", "default")
	v.SetDefault("data.cache_dir", "")

	v.SetDefault("tables.chapters", "sura.json")
	v.SetDefault("tables.verses", "combined_quran.json")
	v.SetDefault("tables.words", "quran_harakat_words.json")
	v.SetDefault("tables.glosses", "en-word.json")
	v.SetDefault("tables.morphology", "quran_morphology.json")
	v.SetDefault("tables.pages", "pagination_map.json")
	v.SetDefault("tables.roots", "root_words.json")

	v.SetDefault("audio.word_base", "https://audios.quranwbw.com/words/")
	v.SetDefault("audio.verse_base", "https://everyayah.com/data/Husary_64kbps/")
	v.SetDefault("audio.player", "mpv --no-video --really-quiet")

	v.SetDefault("links.external_verse_base", "https://corpuscoranicum.de/en/verse-navigator/")

	v.SetDefault("state.backend", string(StateFile))
	v.SetDefault("state.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetDefault("ui.theme", "light")
	v.SetDefault("ui.strip_diacritics", false)
}

// Load reads the configuration. path may be empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Data: Data{
			Dir:        v.GetString("data.dir"),
			URL:        v.GetString("data.url"),
			BundleURL:  v.GetString("data.bundle_url"),
			BundleName: v.GetString("data.bundle_name"),
			CacheDir:   v.GetString("data.cache_dir"),
		},
		Tables: Tables{
			Chapters:   v.GetString("tables.chapters"),
			Verses:     v.GetString("tables.verses"),
			Words:      v.GetString("tables.words"),
			Glosses:    v.GetString("tables.glosses"),
			Morphology: v.GetString("tables.morphology"),
			Pages:      v.GetString("tables.pages"),
			Roots:      v.GetString("tables.roots"),
		},
		Audio: Audio{
			WordBase:  v.GetString("audio.word_base"),
			VerseBase: v.GetString("audio.verse_base"),
			Player:    v.GetString("audio.player"),
		},
		Links: Links{
			ExternalVerseBase: v.GetString("links.external_verse_base"),
		},
		State: State{
			Backend: StateBackend(strings.ToLower(v.GetString("state.backend"))),
			Path:    v.GetString("state.path"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
		UI: UI{
			Theme:           v.GetString("ui.theme"),
			StripDiacritics: v.GetBool("ui.strip_diacritics"),
		},
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.State.Backend {
	case StateFile, StateSQLite:
	default:
		return fmt.Errorf("state.backend must be file or sqlite, got %q", c.State.Backend)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	switch c.UI.Theme {
	case "light", "dark":
	default:
		return fmt.Errorf("ui.theme must be light or dark, got %q", c.UI.Theme)
	}
	if c.Tables.Chapters == "" || c.Tables.Verses == "" || c.Tables.Words == "" ||
		c.Tables.Morphology == "" || c.Tables.Pages == "" || c.Tables.Roots == "" {
		return fmt.Errorf("tables: only the gloss table name may be empty")
	}
	return nil
}
