package config

import (
	"fmt"
	"strings"
	"time"
)

type ElasticsearchConfig struct {
	Addresses []string      `koanf:"addresses"`
	Username  string        `koanf:"username"`
	Password  string        `koanf:"password"`
	Timeout   time.Duration `koanf:"timeout"`
}

// String returns a string representation of the Elasticsearch configuration.
func (c *ElasticsearchConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Elasticsearch ---\n")
	b.WriteString(fmt.Sprintf("  addresses: %s\n", strings.Join(c.Addresses, ", ")))
	b.WriteString(fmt.Sprintf("  username: %s\n", c.Username))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *ElasticsearchConfig) Validate() error {
	if len(c.Addresses) == 0 {
		return fmt.Errorf("elasticsearch addresses are not configured")
	}
	for _, addr := range c.Addresses {
		if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
			return fmt.Errorf("elasticsearch address must start with http:// or https://: %s", addr)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("elasticsearch connect timeout is not configured")
	}
	return nil
}
