package termdex

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/termdex/internal/domain/entry"
)

// Option configures a Dictionary.
type Option interface {
	apply(*dictConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*dictConfig)

func (f optionFunc) apply(c *dictConfig) { f(c) }

type dictConfig struct {
	driver    string // "", "valkey" or "redis"
	addrs     []string
	password  string
	keyPrefix string

	numbersOff      bool
	numberDictID    string
	conceptIDPrefix string

	defaultPerPage int
	maxPerPage     int

	idPolicy     entry.IDPolicy
	dictPolicies map[string]entry.IDPolicy

	httpClient *http.Client
	timeout    time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey stores the dictionary in a Valkey instance instead of memory.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *dictConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis stores the dictionary in a Redis instance instead of memory.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *dictConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the Redis key prefix. Default: "termdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *dictConfig) {
		c.keyPrefix = prefix
	})
}

// WithNumberMatch sets where number matches live: numerals match as an
// entry of dictID with id conceptIDPrefix followed by the exponential form.
// Defaults: "00" and "00:".
func WithNumberMatch(dictID, conceptIDPrefix string) Option {
	return optionFunc(func(c *dictConfig) {
		c.numbersOff = false
		c.numberDictID = dictID
		c.conceptIDPrefix = conceptIDPrefix
	})
}

// WithoutNumberMatch turns number matches off.
func WithoutNumberMatch() Option {
	return optionFunc(func(c *dictConfig) {
		c.numbersOff = true
	})
}

// WithPagination sets the default and maximum page sizes. Defaults: 20, 100.
func WithPagination(defaultPerPage, maxPerPage int) Option {
	return optionFunc(func(c *dictConfig) {
		c.defaultPerPage = defaultPerPage
		c.maxPerPage = maxPerPage
	})
}

// WithIDPolicy sets how numeric entry ids become string ids.
// Default: PaddedIDs{Width: 4}.
func WithIDPolicy(p IDPolicy) Option {
	return optionFunc(func(c *dictConfig) {
		c.idPolicy = p
	})
}

// WithDictIDPolicy overrides the id policy for one dictionary.
func WithDictIDPolicy(dictID string, p IDPolicy) Option {
	return optionFunc(func(c *dictConfig) {
		if c.dictPolicies == nil {
			c.dictPolicies = make(map[string]entry.IDPolicy)
		}
		c.dictPolicies[dictID] = p
	})
}

// WithHTTPClient sets the HTTP client of a remote dictionary.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *dictConfig) {
		c.httpClient = hc
	})
}

// WithTimeout bounds each request of a remote dictionary. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *dictConfig) {
		c.timeout = d
	})
}

// WithLogger enables structured logging for dictionary operations.
// Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *dictConfig) {
		c.logger = l
	})
}

// WithPrometheus registers operation counts and durations on the given
// registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *dictConfig) {
		c.metricsReg = reg
	})
}
