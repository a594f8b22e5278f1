package config

import (
	"context"
	"crypto/tls"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the Redis client backing the rate limiter and
// the response cache. Redis is strictly optional for this service: both
// consumers accept a nil client and turn themselves off, so a failed
// ping here returns nil instead of aborting startup. Registrations must
// keep working when Redis is down.
//
// Address resolution order: REDIS_HOST+REDIS_PORT, then REDIS_ADDR,
// then localhost:6379. REDIS_PASSWORD, REDIS_DB and REDIS_TLS tune the
// connection.
func NewRedisClient() *redis.Client {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host := envStr("REDIS_HOST", ""); host != "" {
		addr = host + ":" + envStr("REDIS_PORT", "6379")
	}

	dbNum := 0
	if v := envStr("REDIS_DB", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("config: ignoring invalid REDIS_DB %q", v)
		} else {
			dbNum = n
		}
	}

	var tlsConf *tls.Config
	if envBool("REDIS_TLS", false) {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  envStr("REDIS_PASSWORD", ""),
		DB:        dbNum,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
