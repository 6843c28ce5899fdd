package main

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mentorai/mentorai/internal/email"
	"github.com/mentorai/mentorai/internal/krypto"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"JWT_SIGNING_KEY":    "2b671594b775f371eab4050b4d58326682df6b1a6cc2e886717b1a26b4d6c45d",
		"ENCRYPTION_KEYS":    "cf55b868d8c7a640265365910093113edce9b6c9226f3bd7c87987d23062d421",
		"EMAIL_FROM":         "mentorai@example.com",
		"LIVEKIT_API_KEY":    "APItest",
		"LIVEKIT_API_SECRET": "testSecret",
	}
}

func newConfig(mf func(*config)) config {
	c := defaultConfig()
	c.jwtSigningKey = must(krypto.ParseKey("2b671594b775f371eab4050b4d58326682df6b1a6cc2e886717b1a26b4d6c45d"))
	c.encryptionKeys = []krypto.Key{
		must(krypto.ParseKey("cf55b868d8c7a640265365910093113edce9b6c9226f3bd7c87987d23062d421")),
	}
	c.email.from = must(email.ParseAddress("mentorai@example.com"))
	c.room.apiKey = "APItest"
	c.room.apiSecret = krypto.NewSecret("testSecret")

	if mf != nil {
		mf(&c)
	}
	return c
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("ok, uses defaults for non-required env variables", func(t *testing.T) {
		// set the required env variables.
		for key, val := range requiredEnv() {
			envForTest(t, key, val)
		}

		want := newConfig(nil)
		got, err := configFromEnv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !reflect.DeepEqual(got, want) {
			t.Errorf("got\n%+v\nwant\n%+v", got, want)
		}
	})

	valid := map[string]struct {
		key string
		val string
		mf  func(*config) // modify default config to create wanted config.
	}{
		"ok, non-default HTTP_ADDR": {
			key: "HTTP_ADDR", val: "localhost:8080", mf: func(c *config) { c.http.addr = "localhost:8080" },
		},
		"ok, non-default HTTP_READ_TIMEOUT": {
			key: "HTTP_READ_TIMEOUT", val: "101ms", mf: func(c *config) { c.http.readTimeout = 101 * time.Millisecond },
		},
		"ok, non-default HTTP_WRITE_TIMEOUT": {
			key: "HTTP_WRITE_TIMEOUT", val: "202ms", mf: func(c *config) { c.http.writeTimeout = 202 * time.Millisecond },
		},
		"ok, non-default HTTP_IDLE_TIMEOUT": {
			key: "HTTP_IDLE_TIMEOUT", val: "303ms", mf: func(c *config) { c.http.idleTimeout = 303 * time.Millisecond },
		},
		"ok, non-default HTTP_SHUTDOWN_TIMEOUT": {
			key: "HTTP_SHUTDOWN_TIMEOUT", val: "404ms", mf: func(c *config) { c.http.shutdownTimeout = 404 * time.Millisecond },
		},
		"ok, non-default DB_FILE": {
			key: "DB_FILE", val: "test.db", mf: func(c *config) { c.dbFile = "test.db" },
		},
		"ok, non-default BASE_URL": {
			key: "BASE_URL",
			val: "https://app.example.com/",
			mf: func(c *config) {
				c.baseURL = "https://app.example.com"
			},
		},
		"ok, multiple ENCRYPTION_KEYS": {
			key: "ENCRYPTION_KEYS",
			val: "cf55b868d8c7a640265365910093113edce9b6c9226f3bd7c87987d23062d421,90303df9f0d348141df67d1ee37a7b3d1a9b3e48a80c9a4a742d8cae85cadbf0",
			mf: func(c *config) {
				c.encryptionKeys = []krypto.Key{
					must(krypto.ParseKey("cf55b868d8c7a640265365910093113edce9b6c9226f3bd7c87987d23062d421")),
					must(krypto.ParseKey("90303df9f0d348141df67d1ee37a7b3d1a9b3e48a80c9a4a742d8cae85cadbf0")),
				}
			},
		},
		"ok, non-default AUTH_WORKER_TIMEOUT": {
			key: "AUTH_WORKER_TIMEOUT", val: "42s", mf: func(c *config) { c.workerTimeout = 42 * time.Second },
		},
		"ok, non-default EMAIL_SENDER": {
			key: "EMAIL_SENDER", val: "smtp", mf: func(c *config) { c.email.sender = "smtp" },
		},
		"ok, non-default EMAIL_HOST": {
			key: "EMAIL_HOST", val: "smtp.example.com", mf: func(c *config) { c.email.host = "smtp.example.com" },
		},
		"ok, non-default EMAIL_PORT": {
			key: "EMAIL_PORT", val: "465", mf: func(c *config) { c.email.port = "465" },
		},
		"ok, non-default EMAIL_USERNAME": {
			key: "EMAIL_USERNAME", val: "mailer", mf: func(c *config) { c.email.username = "mailer" },
		},
		"ok, non-default EMAIL_PASSWORD": {
			key: "EMAIL_PASSWORD", val: "hunter2", mf: func(c *config) { c.email.password = krypto.NewSecret("hunter2") },
		},
		"ok, other EMAIL_FROM": {
			key: "EMAIL_FROM",
			val: "test@example.com",
			mf: func(c *config) {
				c.email.from = must(email.ParseAddress("test@example.com"))
			},
		},
		"ok, non-default EMAIL_FROM_NAME": {
			key: "EMAIL_FROM_NAME", val: "MentorAI", mf: func(c *config) { c.email.fromName = "MentorAI" },
		},
		"ok, other LIVEKIT_API_KEY": {
			key: "LIVEKIT_API_KEY", val: "APIother", mf: func(c *config) { c.room.apiKey = "APIother" },
		},
		"ok, other LIVEKIT_API_SECRET": {
			key: "LIVEKIT_API_SECRET", val: "otherSecret", mf: func(c *config) { c.room.apiSecret = krypto.NewSecret("otherSecret") },
		},
	}

	for name, tc := range valid {
		t.Run(name, func(t *testing.T) {
			// set the required env variables.
			for key, val := range requiredEnv() {
				envForTest(t, key, val)
			}

			// set the tested env variable
			envForTest(t, tc.key, tc.val)

			want := newConfig(tc.mf)
			got, err := configFromEnv()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !reflect.DeepEqual(got, want) {
				t.Errorf("got\n%+v\nwant\n%+v", got, want)
			}
		})
	}

	invalid := map[string]struct {
		key string
		val string
	}{
		"fail, negative HTTP_READ_TIMEOUT":     {"HTTP_READ_TIMEOUT", "-1ms"},
		"fail, negative HTTP_WRITE_TIMEOUT":    {"HTTP_WRITE_TIMEOUT", "-1ms"},
		"fail, negative HTTP_IDLE_TIMEOUT":     {"HTTP_IDLE_TIMEOUT", "-1ms"},
		"fail, negative HTTP_SHUTDOWN_TIMEOUT": {"HTTP_SHUTDOWN_TIMEOUT", "-1ms"},
		"fail, empty DB_FILE":                  {"DB_FILE", ""},
		"fail, invalid JWT_SIGNING_KEY":        {"JWT_SIGNING_KEY", "abc"},
		"fail, invalid ENCRYPTION_KEYS":        {"ENCRYPTION_KEYS", "abc"},
		"fail, negative AUTH_WORKER_TIMEOUT":   {"AUTH_WORKER_TIMEOUT", "-1ms"},
		"fail, unknown EMAIL_SENDER":           {"EMAIL_SENDER", "carrier-pigeon"},
		"fail, invalid EMAIL_FROM":             {"EMAIL_FROM", "@@"},
	}

	for name, tc := range invalid {
		t.Run(name, func(t *testing.T) {
			// set the required env variables.
			for key, val := range requiredEnv() {
				envForTest(t, key, val)
			}

			// set the tested env variable.
			envForTest(t, tc.key, tc.val)

			_, err := configFromEnv()
			if err == nil {
				t.Fatal("expected error, got <nil>")
			}

			// Check that the error message contains the invalid env variable.
			// These errors are immediately logged, so I'm fine comparing on a string level.
			msg := err.Error()
			if !strings.Contains(msg, tc.key) {
				t.Errorf("expected error message to mention %s, got %s", tc.key, msg)
			}
		})
	}

	for key := range requiredEnv() {
		t.Run(fmt.Sprintf("fail, env variable %s not set", key), func(t *testing.T) {
			// set all required env variables except the one being tested.
			for k, val := range requiredEnv() {
				if k != key {
					envForTest(t, k, val)
				}
			}

			_, err := configFromEnv()
			if err == nil {
				t.Fatal("expected error, got <nil>")
			}

			// Check that the error message contains the missing env variable.
			// These errors are immediately logged, so I'm fine comparing on a string level.
			msg := err.Error()
			if !strings.Contains(msg, key) {
				t.Errorf("expected error message to mention %s, got %s", key, msg)
			}
		})
	}

	t.Run("fail, multiple invalid env variables", func(t *testing.T) {
		// set the required env variables.
		for key, val := range requiredEnv() {
			envForTest(t, key, val)
		}

		// set two invalid env variables.
		envForTest(t, "HTTP_READ_TIMEOUT", "-1ms")
		envForTest(t, "HTTP_WRITE_TIMEOUT", "-1ms")

		_, err := configFromEnv()
		if err == nil {
			t.Error("expected error, got <nil>")
		}

		// Check that the error message contains both invalid env variables.
		// Again, these errors are immediately logged, so I'm fine comparing on a string level.
		msg := err.Error()
		for _, key := range []string{"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT"} {
			if !strings.Contains(msg, key) {
				t.Errorf("expected error message to mention %s, got %s", key, msg)
			}
		}
	})
}

// envForTest sets an environment variable for a test and unsets it when the test is done.
func envForTest(t *testing.T, key, val string) {
	t.Helper()

	t.Cleanup(func() {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset env var %s: %v", key, err)
		}
	})

	if err := os.Setenv(key, val); err != nil {
		t.Fatalf("failed to set env var %s: %v", key, err)
	}
}
