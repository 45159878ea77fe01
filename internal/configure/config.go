package configure

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func checkErr(err error) {
	if err != nil {
		zap.S().Fatalw("config",
			"error", err,
		)
	}
}

func New() *Config {
	initLogging("info")

	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	config := viper.New()

	// Default config
	b, _ := json.Marshal(Default())
	tmp := viper.New()
	defaultConfig := bytes.NewReader(b)

	tmp.SetConfigType("json")
	checkErr(tmp.ReadConfig(defaultConfig))
	checkErr(config.MergeConfigMap(tmp.AllSettings()))

	pflag.String("config", "config.yaml", "Config file location")
	pflag.Bool("noheader", false, "Disable the startup header")

	pflag.Parse()
	checkErr(config.BindPFlags(pflag.CommandLine))

	// File
	config.SetConfigFile(config.GetString("config"))
	config.AddConfigPath(".")

	if err := config.ReadInConfig(); err == nil {
		checkErr(config.MergeInConfig())
	}

	bindEnvs(config, Config{})

	// Environment
	config.AutomaticEnv()
	config.SetEnvPrefix("API")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AllowEmptyEnv(true)

	c := &Config{}
	checkErr(config.Unmarshal(&c))

	initLogging(c.Level)

	return c
}

// Default returns the configuration used before any file, flag or environment
// value is applied.
func Default() Config {
	c := Config{
		Level:      "info",
		ConfigFile: "config.yaml",
	}

	c.Mongo.URI = "mongodb://localhost:27017"
	c.Mongo.DB = "snapcopy"

	c.Http.Addr = "0.0.0.0"
	c.Http.Port = 5000

	c.Health.Bind = "0.0.0.0:9000"
	c.Monitoring.Bind = "0.0.0.0:9100"
	c.PProf.Bind = "127.0.0.1:6060"

	c.Nats.Subject = "relay.user"

	c.Realtime.HeartbeatInterval = 25000
	c.Realtime.SendBuffer = 64
	c.Realtime.HandlerTimeout = 10000
	c.Realtime.MaxMessageSize = 64 * 1024

	c.Status.TTL = 24 * time.Hour
	c.Status.SweepCron = "*/5 * * * *"
	c.Status.ViewerPolicy = ViewerPolicyCoupled

	c.Limits.EventsPerSecond = 20
	c.Limits.EventBurst = 40
	c.Limits.MaxStatusItems = 30
	c.Limits.MaxUploadBytes = 50 * 1024 * 1024
	c.Limits.RestPerMinute = 300

	return c
}

func bindEnvs(config *viper.Viper, iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)

	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)

		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}

		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(config, v.Interface(), append(parts, tv)...)
		default:
			_ = config.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

// ViewerPolicy decides whether a status owner sees who viewed their items.
type ViewerPolicy string

const (
	// ViewerPolicyCoupled hides own viewers whenever friends have active statuses
	ViewerPolicyCoupled ViewerPolicy = "coupled"
	// ViewerPolicyIndependent always shows own viewers
	ViewerPolicyIndependent ViewerPolicy = "independent"
)

type Config struct {
	Level      string `mapstructure:"level" json:"level"`
	ConfigFile string `mapstructure:"config" json:"config"`
	NoHeader   bool   `mapstructure:"noheader" json:"noheader"`
	MediaURL   string `mapstructure:"media_url" json:"media_url"`

	Mongo struct {
		URI      string `mapstructure:"uri" json:"uri"`
		Username string `mapstructure:"username" json:"username"`
		Password string `mapstructure:"password" json:"password"`
		DB       string `mapstructure:"db" json:"db"`
		Direct   bool   `mapstructure:"direct" json:"direct"`
	} `mapstructure:"mongo" json:"mongo"`

	Health struct {
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
		Bind    string `mapstructure:"bind" json:"bind"`
	} `mapstructure:"health" json:"health"`

	PProf struct {
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
		Bind    string `mapstructure:"bind" json:"bind"`
	} `mapstructure:"pprof" json:"pprof"`

	Monitoring struct {
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
		Bind    string `mapstructure:"bind" json:"bind"`
		Labels  Labels `mapstructure:"labels" json:"labels"`
	} `mapstructure:"monitoring" json:"monitoring"`

	Http struct {
		Addr string `mapstructure:"addr" json:"addr"`
		Port int    `mapstructure:"port" json:"port"`

		Cookie struct {
			Domain    string   `mapstructure:"domain" json:"domain"`
			Secure    bool     `mapstructure:"secure" json:"secure"`
			Whitelist []string `mapstructure:"whitelist" json:"whitelist"`
		} `mapstructure:"cookie" json:"cookie"`
	} `mapstructure:"http" json:"http"`

	Nats struct {
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
		URL     string `mapstructure:"url" json:"url"`
		Subject string `mapstructure:"subject" json:"subject"`
	} `mapstructure:"nats" json:"nats"`

	Realtime struct {
		// milliseconds
		HeartbeatInterval uint32 `mapstructure:"heartbeat_interval" json:"heartbeat_interval"`
		SendBuffer        int    `mapstructure:"send_buffer" json:"send_buffer"`
		// milliseconds
		HandlerTimeout int   `mapstructure:"handler_timeout" json:"handler_timeout"`
		MaxMessageSize int64 `mapstructure:"max_message_size" json:"max_message_size"`
	} `mapstructure:"realtime" json:"realtime"`

	Status struct {
		TTL          time.Duration `mapstructure:"ttl" json:"ttl"`
		SweepCron    string        `mapstructure:"sweep_cron" json:"sweep_cron"`
		ViewerPolicy ViewerPolicy  `mapstructure:"viewer_policy" json:"viewer_policy"`
	} `mapstructure:"status" json:"status"`

	Limits struct {
		EventsPerSecond float64 `mapstructure:"events_per_second" json:"events_per_second"`
		EventBurst      int     `mapstructure:"event_burst" json:"event_burst"`
		MaxStatusItems  int     `mapstructure:"max_status_items" json:"max_status_items"`
		MaxUploadBytes  int     `mapstructure:"max_upload_bytes" json:"max_upload_bytes"`
		RestPerMinute   int     `mapstructure:"rest_per_minute" json:"rest_per_minute"`
	} `mapstructure:"limits" json:"limits"`

	S3 struct {
		Enabled      bool   `mapstructure:"enabled" json:"enabled"`
		AccessToken  string `mapstructure:"access_token" json:"access_token"`
		SecretKey    string `mapstructure:"secret_key" json:"secret_key"`
		Region       string `mapstructure:"region" json:"region"`
		PublicBucket string `mapstructure:"public_bucket" json:"public_bucket"`
		Endpoint     string `mapstructure:"endpoint" json:"endpoint"`
		Namespace    string `mapstructure:"namespace" json:"namespace"`
		PublicURL    string `mapstructure:"public_url" json:"public_url"`
	} `mapstructure:"s3" json:"s3"`

	Credentials struct {
		JWTSecret string `mapstructure:"jwt_secret" json:"jwt_secret"`
	} `mapstructure:"credentials" json:"credentials"`
}

type Labels []struct {
	Key   string `mapstructure:"key" json:"key"`
	Value string `mapstructure:"value" json:"value"`
}

func (l Labels) ToPrometheus() prometheus.Labels {
	mp := prometheus.Labels{}

	for _, v := range l {
		mp[v.Key] = v.Value
	}

	return mp
}
