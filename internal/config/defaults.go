package config

const (
	defaultCacheDir           = "~/.local/share/reelcache"
	defaultLogDir             = "~/.local/share/reelcache/logs"
	defaultPosterDir          = "~/.local/share/reelcache/posters"
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL   = "https://image.tmdb.org/t/p/original"
	defaultTMDBLanguage       = "en-US"
	defaultTMDBRequestTimeout = 10
	defaultRemoteTimeout      = 15
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:  defaultCacheDir,
			LogDir:    defaultLogDir,
			PosterDir: defaultPosterDir,
		},
		TMDB: TMDB{
			BaseURL:        defaultTMDBBaseURL,
			ImageBaseURL:   defaultTMDBImageBaseURL,
			Language:       defaultTMDBLanguage,
			RequestTimeout: defaultTMDBRequestTimeout,
		},
		Lookup: Lookup{
			RemoteTimeout: defaultRemoteTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
