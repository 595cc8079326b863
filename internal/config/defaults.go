package config

// DefaultGenres is the controlled genre vocabulary used when the config does
// not provide one. Tags outside this set are dropped during text assembly.
var DefaultGenres = []string{
	"Animation",
	"Comedy",
	"Family",
	"Adventure",
	"Fantasy",
	"Romance",
	"Drama",
	"Action",
	"Crime",
	"Thriller",
	"Horror",
	"History",
	"Science Fiction",
	"Mystery",
	"War",
	"Foreign",
	"Music",
	"Documentary",
	"Western",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/susume/data/db/watchlist.db"
	}
	if cfg.Storage.ArtifactsDir == "" {
		cfg.Storage.ArtifactsDir = "/usr/local/var/susume/data/recommender"
	}
	if cfg.Storage.TitleIndexPath == "" {
		cfg.Storage.TitleIndexPath = "/usr/local/var/susume/data/indices/titles"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "/usr/local/var/susume/data/movies_metadata.csv"
	}
	if len(cfg.Catalog.Genres) == 0 {
		cfg.Catalog.Genres = append([]string(nil), DefaultGenres...)
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/susume/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 512
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 64
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Recommend.DefaultK == 0 {
		cfg.Recommend.DefaultK = 5
	}
	if cfg.Recommend.MaxK == 0 {
		cfg.Recommend.MaxK = 100
	}
	if cfg.TMDB.BaseURL == "" {
		cfg.TMDB.BaseURL = "https://api.themoviedb.org/3"
	}
	if cfg.TMDB.RateLimit == 0 {
		cfg.TMDB.RateLimit = 40
	}
	if cfg.TMDB.RateWindowSec == 0 {
		cfg.TMDB.RateWindowSec = 2
	}
}
