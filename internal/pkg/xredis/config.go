package xredis

import (
	"time"
)

// Config describes one redis connection. Either URL or Addr must be set,
// URL wins when both are given. Username, Password and DB override the
// values carried in the URL when set.
type Config struct {
	// Addr is a plain host:port.
	Addr string `conf:"addr" yaml:"addr" json:"addr"`
	// URL is a full redis:// or rediss:// URL, credentials and db included.
	URL      string `conf:"url" yaml:"url" json:"url"`
	Username string `conf:"username" yaml:"username" json:"username"`
	Password string `conf:"password" yaml:"password" json:"password"`
	// DB is a pointer so an explicit 0 can still override the URL.
	DB *int `conf:"db" yaml:"db" json:"db"`
	// TLS enables TLS for plain Addr connections. rediss:// implies it.
	TLS                   bool `conf:"tls" yaml:"tls" json:"tls"`
	TLSInsecureSkipVerify bool `conf:"tls_insecure_skip_verify" yaml:"tls_insecure_skip_verify" json:"tls_insecure_skip_verify"`
	// Expiration is the default TTL consumers apply to keys they write.
	Expiration time.Duration `conf:"expiration" yaml:"expiration" json:"expiration"`
}
