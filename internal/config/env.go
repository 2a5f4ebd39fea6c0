package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	SslCertPath string
	Port        string
	LogMode     string
	JWTSecret   string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	AIAPIKey   string
	EmbedModel string
	EmbedDim   int
	GenModel   string

	VideoIndexerEndpoint string
	VideoIndexerKey      string

	// Upload validation.
	MaxUploadBytes    int64
	AllowedExtensions []string

	// Pipeline tuning.
	WordsPerChunk       int
	MinChunkWords       int
	CharsPerWord        int
	TabularChunkChars   int
	JSONChunkChars      int
	AudioSegmentSeconds int
	VideoWindowSeconds  int
	MaxPDFBytes         int64
	MaxPDFPages         int
	IngestWorkers       int

	EmbedMaxRetries int

	EnhancedCitations  bool
	MetadataExtraction bool
	TempDir            string
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SslCertPath: getEnv("SSL_CERT_PATH", ""),
		Port:        getEnv("PORT", "8080"),
		LogMode:     getEnv("LOG_MODE", "dev"),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "docuchat-citations"),

		AIAPIKey:   getEnv("GEMINI_API_KEY", ""),
		EmbedModel: getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:   getEnvInt("EMBED_DIM", 768),
		GenModel:   getEnv("GEN_MODEL", "gemini-1.5-flash"),

		VideoIndexerEndpoint: getEnv("VIDEO_INDEXER_ENDPOINT", ""),
		VideoIndexerKey:      getEnv("VIDEO_INDEXER_KEY", ""),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 150)) << 20,
		AllowedExtensions: getEnvList("ALLOWED_EXTENSIONS",
			".txt,.log,.md,.html,.htm,.json,.csv,.xlsx,.pdf,.docx,.pptx,.png,.jpg,.jpeg,.mp3,.wav,.m4a,.mp4,.mov"),

		WordsPerChunk:       getEnvInt("WORDS_PER_CHUNK", 400),
		MinChunkWords:       getEnvInt("MIN_CHUNK_WORDS", 120),
		CharsPerWord:        getEnvInt("CHARS_PER_WORD", 6),
		TabularChunkChars:   getEnvInt("TABULAR_CHUNK_CHARS", 2400),
		JSONChunkChars:      getEnvInt("JSON_CHUNK_CHARS", 2400),
		AudioSegmentSeconds: getEnvInt("AUDIO_SEGMENT_SECONDS", 540),
		VideoWindowSeconds:  getEnvInt("VIDEO_WINDOW_SECONDS", 30),
		MaxPDFBytes:         int64(getEnvInt("MAX_PDF_MB", 500)) << 20,
		MaxPDFPages:         getEnvInt("MAX_PDF_PAGES", 2000),
		IngestWorkers:       getEnvInt("INGEST_WORKERS", 4),

		EmbedMaxRetries: getEnvInt("EMBED_MAX_RETRIES", 5),

		EnhancedCitations:  getEnvBool("ENHANCED_CITATIONS", false),
		MetadataExtraction: getEnvBool("METADATA_EXTRACTION", true),
		TempDir:            getEnv("TEMP_DIR", os.TempDir()),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}

func getEnvList(key, def string) []string {
	raw := getEnv(key, def)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
