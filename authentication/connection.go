// this package manages its own connection to redis
// redis connections are made to a specific DB (id-num) which only holds session registrations

package authentication

import (
	"context"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// OpenConnection connects to the session store (JWT_DB)
func OpenConnection(ctx context.Context) (*redis.Client, error) {

	dsn := os.Getenv("CACHE_HOST") + ":" + os.Getenv("CACHE_PORT")

	dbID, err := strconv.Atoi(os.Getenv("JWT_DB"))
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     dsn,
		Password: os.Getenv("CACHE_PASS"),
		DB:       dbID,
	})

	if err = client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
