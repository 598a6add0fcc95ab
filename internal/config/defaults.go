package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.RecordDatabasePath == "" {
		cfg.Storage.RecordDatabasePath = ".kioku/data/records.db"
	}
	if cfg.Storage.EmbeddingDatabasePath == "" {
		cfg.Storage.EmbeddingDatabasePath = ".kioku/data/embeddings.db"
	}
	if cfg.Storage.KeywordIndexPath == "" {
		cfg.Storage.KeywordIndexPath = ".kioku/data/indices/keyword"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "nomic-embed-text"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = "http://localhost:11434"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "llama3.2"
	}
	if cfg.Chat.TimeoutSeconds == 0 {
		cfg.Chat.TimeoutSeconds = 120
	}
	if cfg.Search.ChunkSize == 0 {
		cfg.Search.ChunkSize = 512
	}
	if cfg.Search.ChunkOverlap == 0 {
		cfg.Search.ChunkOverlap = 50
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.MinSimilarity == 0 {
		cfg.Search.MinSimilarity = 0.3
	}
	if cfg.Router.ExemplarThreshold == 0 {
		cfg.Router.ExemplarThreshold = 0.78
	}
	if cfg.Advice.Style == "" {
		cfg.Advice.Style = "balanced"
	}
	if cfg.Advice.MaxActionItems == 0 {
		cfg.Advice.MaxActionItems = 5
	}
}
