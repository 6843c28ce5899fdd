package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/mentorai/mentorai/internal/email"
	"github.com/mentorai/mentorai/internal/krypto"
)

// httpConfig is the configuration for the HTTP server.
type httpConfig struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
}

// emailConfig is the configuration for outgoing email.
type emailConfig struct {
	// sender selects the delivery mechanism, "smtp" or "log".
	sender   string
	host     string
	port     string
	username string
	password krypto.Secret
	from     email.Address
	fromName string
}

// roomConfig is the API key pair for the media server.
type roomConfig struct {
	apiKey    string
	apiSecret krypto.Secret
}

// config is the configuration for the server command.
type config struct {
	http           httpConfig
	dbFile         string
	baseURL        string
	jwtSigningKey  krypto.Key
	encryptionKeys []krypto.Key
	email          emailConfig
	room           roomConfig
	workerTimeout  time.Duration
}

// defaultConfig returns a config with sane default values.
//
// Secrets have no defaults, they must always be provided via the
// environment.
func defaultConfig() config {
	return config{
		http: httpConfig{
			addr:            ":8888",
			readTimeout:     time.Second * 5,
			writeTimeout:    time.Second * 10,
			idleTimeout:     time.Second * 120,
			shutdownTimeout: time.Second * 15,
		},
		dbFile:  "mentorai.db",
		baseURL: "http://localhost:8888",
		email: emailConfig{
			sender: "log",
			port:   "587",
		},
		workerTimeout: time.Second * 30,
	}
}

// envMap maps environment variable names to fields in the config struct.
var envMap = map[string]func(v string, c *config) error{
	"HTTP_ADDR": func(v string, c *config) error {
		c.http.addr = v
		return nil
	},
	"HTTP_READ_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.readTimeout, 0, math.MaxInt64)
	},
	"HTTP_WRITE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.writeTimeout, 0, math.MaxInt64)
	},
	"HTTP_IDLE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.idleTimeout, 0, math.MaxInt64)
	},
	"HTTP_SHUTDOWN_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.shutdownTimeout, 0, math.MaxInt64)
	},
	"DB_FILE": func(v string, c *config) error {
		c.dbFile = v
		return nil
	},
	"BASE_URL": func(v string, c *config) error {
		c.baseURL = strings.TrimSuffix(v, "/")
		return nil
	},
	"JWT_SIGNING_KEY": func(v string, c *config) error {
		key, err := krypto.ParseKey(v)
		if err != nil {
			return err
		}

		c.jwtSigningKey = key
		return nil
	},
	"ENCRYPTION_KEYS": func(v string, c *config) error {
		for _, raw := range strings.Split(v, ",") {
			key, err := krypto.ParseKey(raw)
			if err != nil {
				return err
			}

			c.encryptionKeys = append(c.encryptionKeys, key)
		}
		return nil
	},
	"AUTH_WORKER_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.workerTimeout, 0, math.MaxInt64)
	},
	"EMAIL_SENDER": func(v string, c *config) error {
		if v != "smtp" && v != "log" {
			return fmt.Errorf("unknown email sender %q", v)
		}

		c.email.sender = v
		return nil
	},
	"EMAIL_HOST": func(v string, c *config) error {
		c.email.host = v
		return nil
	},
	"EMAIL_PORT": func(v string, c *config) error {
		c.email.port = v
		return nil
	},
	"EMAIL_USERNAME": func(v string, c *config) error {
		c.email.username = v
		return nil
	},
	"EMAIL_PASSWORD": func(v string, c *config) error {
		c.email.password = krypto.NewSecret(v)
		return nil
	},
	"EMAIL_FROM": func(v string, c *config) error {
		addr, err := email.ParseAddress(v)
		if err != nil {
			return err
		}

		c.email.from = addr
		return nil
	},
	"EMAIL_FROM_NAME": func(v string, c *config) error {
		c.email.fromName = v
		return nil
	},
	"LIVEKIT_API_KEY": func(v string, c *config) error {
		c.room.apiKey = v
		return nil
	},
	"LIVEKIT_API_SECRET": func(v string, c *config) error {
		c.room.apiSecret = krypto.NewSecret(v)
		return nil
	},
}

// configFromEnv returns a config with values from the environment. It falls
// back to default values for any missing environment variables.
//
// It does a best effort to validate provided values, so that mistakes are
// caught ASAP. However, there is no guarantee that the returned config
// is valid and will work.
func configFromEnv() (config, error) {
	c := defaultConfig()

	var errs []error
	for key, mf := range envMap {
		if val, ok := os.LookupEnv(key); ok {
			if err := mf(val, &c); err != nil {
				errs = append(errs, fmt.Errorf("invalid env variable %s: %w", key, err))
			}
		}
	}

	if err := c.checkRequired(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return c, errors.Join(errs...)
	}

	return c, nil
}

// checkRequired verifies the settings without which the server can't
// operate safely.
func (c config) checkRequired() error {
	if c.dbFile == "" {
		return errors.New("DB_FILE must not be empty")
	}

	if len(c.jwtSigningKey.SecretValue()) == 0 {
		return errors.New("JWT_SIGNING_KEY is required")
	}

	if len(c.encryptionKeys) == 0 {
		return errors.New("ENCRYPTION_KEYS is required")
	}

	if c.email.sender == "smtp" && c.email.host == "" {
		return errors.New("EMAIL_HOST is required when EMAIL_SENDER is smtp")
	}

	if c.email.from == "" {
		return errors.New("EMAIL_FROM is required")
	}

	if c.room.apiKey == "" || len(c.room.apiSecret.SecretValue()) == 0 {
		return errors.New("LIVEKIT_API_KEY and LIVEKIT_API_SECRET are required")
	}

	return nil
}

// confDuration attempts to parse v into tgt and checks if the result is in
// the provided range (inclusive).
func confDuration(v string, tgt *time.Duration, min, max time.Duration) error {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return err
	}

	if dur < min || dur > max {
		return fmt.Errorf("duration %s not in range [%s, %s] (inclusive)", dur, min, max)
	}

	*tgt = dur

	return nil
}
