package database

import (
	"context"
	"errors"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
)

// client remains private
var influxClient influxdb2.Client

// OpenInfluxConnection pools the connection to the store
func OpenInfluxConnection() error {
	url := os.Getenv("ANALYTICS_URL")
	token := os.Getenv("ANALYTICS_TOKEN")

	influxClient = influxdb2.NewClientWithOptions(url, token,
		influxdb2.DefaultOptions().SetPrecision(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ready, err := influxClient.Ready(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return errors.New("analytics store not ready")
	}

	return nil
}

// GetReviewWriter returns a blocking writer to the review events bucket
func GetReviewWriter() api.WriteAPIBlocking {
	return influxClient.WriteAPIBlocking(os.Getenv("ANALYTICS_ORG"), os.Getenv("ANALYTICS_REVIEWS_BUCKET"))
}

// CloseInfluxConnection closes the connection to the store
func CloseInfluxConnection() {
	if influxClient != nil {
		influxClient.Close()
	}
}
