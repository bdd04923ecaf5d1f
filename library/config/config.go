package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Astemirdum/library-management/pkg/kafka"
	"github.com/Astemirdum/library-management/pkg/logger"
	"github.com/Astemirdum/library-management/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `envconfig:"LIBRARY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `envconfig:"LIBRARY_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE"`
}

type Auth struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true" json:"-"`
	TokenTTL time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

type Paging struct {
	MaxLimit int  `envconfig:"PAGING_MAX_LIMIT" default:"100"`
	Strict   bool `envconfig:"PAGING_STRICT" default:"true"`
}

type Borrow struct {
	Atomic bool `envconfig:"BORROW_ATOMIC" default:"true"`
}

type Student struct {
	RecordCreator bool `envconfig:"STUDENT_RECORD_CREATOR" default:"true"`
}

type Config struct {
	Server   HTTPServer
	Database postgres.DB
	Kafka    kafka.Config
	Auth     Auth
	Paging   Paging
	Borrow   Borrow
	Student  Student
	Log      logger.Log
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		if err := envconfig.Process("", &config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
