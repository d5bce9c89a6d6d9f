package config

// Config is the root configuration structure.
type Config struct {
	Catalog  CatalogConfig  `toml:"catalog"`
	Storage  StorageConfig  `toml:"storage"`
	Playback PlaybackConfig `toml:"playback"`
	TUI      TUIConfig      `toml:"tui"`
	Log      LogConfig      `toml:"log"`
}

// CatalogConfig selects the song catalog source.
type CatalogConfig struct {
	// Path to a CSV file. Empty uses the generated dataset only.
	Path string `toml:"path"`
	// Seed for generated durations and shuffle. Zero seeds from the clock.
	Seed int64 `toml:"seed"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Backend     string `toml:"backend"`
	Dir         string `toml:"dir"`
	RedisAddr   string `toml:"redis_addr"`
	RedisDB     int    `toml:"redis_db"`
	RedisPrefix string `toml:"redis_prefix"`
}

// PlaybackConfig holds default playback settings.
type PlaybackConfig struct {
	Volume  int  `toml:"volume"`
	Shuffle bool `toml:"shuffle"`
	Repeat  bool `toml:"repeat"`
	// Milliseconds between progress ticks.
	TickInterval int `toml:"tick_interval"`
	// Milliseconds past the song's duration before the watchdog ends it.
	WatchdogGrace int `toml:"watchdog_grace"`
	// Simulate a browser that refuses audio until the first key press.
	AutoplayBlocked bool `toml:"autoplay_blocked"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	File   string `toml:"file"`
	Format string `toml:"format"`
}
