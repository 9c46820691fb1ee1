package analytics

import (
	"concordia-courses/helpers"
	"concordia-courses/models"
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api/write"
	"github.com/sirupsen/logrus"
)

// review events
const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionVoted   = "voted"
)

// pointWriter is the part of the influx write api used here (api.WriteAPIBlocking)
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Tracker records review activity in the analytics store (influxDB).
// A disabled tracker (USE_ANALYTICS != YES) drops every event.
type Tracker struct {
	enabled bool
	writer  pointWriter
}

// NewTracker creates a tracker writing to the given api; writer may be nil when disabled
func NewTracker(enabled bool, writer pointWriter) *Tracker {
	return &Tracker{
		enabled: enabled && writer != nil,
		writer:  writer,
	}
}

// Enabled reports whether events are recorded
func (t *Tracker) Enabled() bool {
	return t != nil && t.enabled
}

// ReviewPoint builds the measurement of a review event
func ReviewPoint(action string, review *models.Review, ts time.Time) *write.Point {

	// the subject is a tag since it's what's aggregated on;
	// the author is a field to keep series cardinality low
	// https://docs.influxdata.com/influxdb/v2.0/write-data/best-practices/resolve-high-cardinality/
	return influxdb2.NewPoint(
		"review",
		map[string]string{
			"type":    string(review.Type),
			"subject": review.SubjectID,
			"action":  action,
		},
		map[string]interface{}{
			"userId":     review.UserID,
			"rating":     review.Rating,
			"difficulty": review.Difficulty,
		},
		ts)
}

// SaveReviewEvent stores a review event; failures are logged, never returned
func (t *Tracker) SaveReviewEvent(ctx context.Context, action string, review *models.Review) {

	if !t.Enabled() {
		return
	}

	p := ReviewPoint(action, review, time.Now())

	if err := t.writer.WritePoint(ctx, p); err != nil {
		logrus.WithFields(logrus.Fields{
			"action":  action,
			"subject": review.SubjectID,
		}).Warn(helpers.WrapError(err, helpers.FuncName()))
	}
}
