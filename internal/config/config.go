package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env               string        `mapstructure:"ENV"`
	Port              string        `mapstructure:"PORT"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	AdminKey          string        `mapstructure:"ADMIN_KEY"`
	SummarizerURL     string        `mapstructure:"SUMMARIZER_URL"`
	SummarizerTimeout time.Duration `mapstructure:"SUMMARIZER_TIMEOUT"`
	CORSAllowed       string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	KeywordsFile      string        `mapstructure:"KEYWORDS_FILE"`
	MMRDiversity      float64       `mapstructure:"MMR_DIVERSITY"`
	SentimentEnabled  bool          `mapstructure:"SENTIMENT_ENABLED"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("SUMMARIZER_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MMR_DIVERSITY", 0.65)
	v.SetDefault("SENTIMENT_ENABLED", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadKeywords reads the flag keyword table from a YAML file shaped as
// {category: [terms...]}. An empty path returns nil so the caller falls
// back to the built-in vocabulary.
func LoadKeywords(path string) (map[string][]string, error) {
	if path == "" {
		return nil, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	table := map[string][]string{}
	for _, key := range v.AllKeys() {
		table[key] = v.GetStringSlice(key)
	}
	return table, nil
}
