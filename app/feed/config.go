package feed

// Source configuration types, loaded from YAML files in the sources
// directory. The file name (without extension) becomes the source name.

const (
	SourceTypeRemotive = "remotive"
	SourceTypeRSS      = "rss"
)

type Config struct {
	Name     string // Derived from filename (without .yml extension)
	URL      string
	Type     string
	Settings ConfigSettings
}

type ConfigSettings struct {
	Enabled       bool
	Timeout       int  // seconds, upstream fetch bound
	DefaultRemote bool // listings without location data count as remote
}

// rawConfig mirrors the YAML file shape. default_remote is a pointer so an
// omitted value can default to true.
type rawConfig struct {
	URL      string `yaml:"url"`
	Type     string `yaml:"type"`
	Settings struct {
		Enabled       bool  `yaml:"enabled"`
		Timeout       int   `yaml:"timeout"`
		DefaultRemote *bool `yaml:"default_remote"`
	} `yaml:"settings"`
}

func (r rawConfig) toConfig(name string) Config {
	return Config{
		Name: name,
		URL:  r.URL,
		Type: r.Type,
		Settings: ConfigSettings{
			Enabled:       r.Settings.Enabled,
			Timeout:       r.Settings.Timeout,
			DefaultRemote: r.Settings.DefaultRemote == nil || *r.Settings.DefaultRemote,
		},
	}
}

// DefaultRemotiveConfig is used when the sources directory holds no
// configuration files, so the service works out of the box.
func DefaultRemotiveConfig() *Config {
	return &Config{
		Name: "remotive",
		URL:  "https://remotive.com/api/remote-jobs",
		Type: SourceTypeRemotive,
		Settings: ConfigSettings{
			Enabled:       true,
			Timeout:       10,
			DefaultRemote: true,
		},
	}
}
