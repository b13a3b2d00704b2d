package kbsearch

import "go.uber.org/zap"

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs     []string
	password  string
	embedder  Embedder
	logger    *zap.Logger
	workers   int
	queueSize int
}

// WithRedis sets the Redis connection parameters.
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
		c.password = password
	}
}

// WithEmbedder sets the embedding provider. Without one, article writes
// still succeed but embedding generation fails and nothing becomes
// searchable.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithGeneratorPool sizes the background embedding pool.
func WithGeneratorPool(workers, queueSize int) Option {
	return func(c *clientConfig) {
		c.workers = workers
		c.queueSize = queueSize
	}
}
