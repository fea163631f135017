package config

import "time"

// RateLimitConfig drives the token bucket guarding the public write
// endpoints (record submission, grievance filing, chatbot, password reset).
// LocalRPS/LocalBurst configure the in-process limiter used when Redis is
// unavailable.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
	LocalRPS       float64
	LocalBurst     int
}

func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 30),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 2*time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rice:rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
		LocalBurst:     envInt("RATE_LIMIT_LOCAL_BURST", 10),
	}
	def.LocalRPS = float64(envInt("RATE_LIMIT_LOCAL_RPS", 1))
	if b := envInt("RATE_LIMIT_BURST", -1); b > 0 { def.Capacity = b }
	if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		def.RefillTokens = 1
		def.RefillInterval = every
	}
	if def.Capacity < 1 { def.Capacity = 1 }
	if def.RefillTokens < 1 { def.RefillTokens = 1 }
	if def.RefillInterval <= 0 { def.RefillInterval = time.Second }
	if def.LocalRPS <= 0 { def.LocalRPS = 1 }
	if def.LocalBurst < 1 { def.LocalBurst = 1 }
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL { def.TTL = minTTL }
	return def
}
