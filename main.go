package main

import (
	"concordia-courses/analytics"
	"concordia-courses/archive"
	"concordia-courses/authentication"
	"concordia-courses/database"
	"concordia-courses/environment"
	"concordia-courses/mailer"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// wird VOR der Programmausführung (main) gerufen
// die Reihenfolge der Package-Inits ist aber undefiniert!
func init() {
	// Load Config (the variables may also come from the container)
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file loaded")
	}
}

func setupLogging(settings environment.Settings) {
	if settings.AppEnv == "PRD" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(settings.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// side channels are optional: analytics, mail queue and upload archive
func openSideChannels(settings environment.Settings) environment.Side {
	var side environment.Side

	if settings.UseAnalytics {
		if err := database.OpenInfluxConnection(); err != nil {
			logrus.WithError(err).Warn("analytics disabled")
		} else {
			side.Tracker = analytics.NewTracker(true, database.GetReviewWriter())
		}
	}

	if settings.UseMailQueue {
		if err := database.OpenQueueConnection(mailer.MailQueue); err != nil {
			logrus.WithError(err).Warn("mail queue not available, verification codes are logged")
		} else {
			side.Mailer = mailer.NewQueueMailer(database.GetQueueChannel())
		}
	}

	if settings.UseArchive {
		if err := database.OpenMinioConnection(); err != nil {
			logrus.WithError(err).Warn("upload archive disabled")
		} else {
			side.Archiver = archive.NewMinioArchiver(database.GetMinioConnection(), os.Getenv("ARCHIVE_BUCKET"))
		}
	}

	return side
}

func closeSideChannels() {
	database.CloseInfluxConnection()
	if err := database.CloseQueueConnection(); err != nil {
		logrus.Error(err)
	}
}

func main() {
	settings := environment.LoadSettings()
	setupLogging(settings)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to main database here (mongoDB)
	if err := database.OpenConnection(); err != nil {
		logrus.Fatal(err)
	}
	defer database.CloseConnection()

	if err := database.EnsureIndexes(ctx, database.GetConnection().Database(settings.DBName)); err != nil {
		logrus.Fatal(err)
	}

	// connect to JWT Store (redis)
	redisClient, err := authentication.OpenConnection(ctx)
	if err != nil {
		logrus.Fatal(err)
	}
	defer redisClient.Close()

	side := openSideChannels(settings)
	defer closeSideChannels()

	// Initialize the Models
	environment.Initialize(settings, redisClient, side)

	// the resend registry only needs entries within the cooldown
	go func() {
		ticker := time.NewTicker(settings.ResendCooldown)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				environment.Env.Throttle.Flush()
			}
		}
	}()

	router := gin.Default()
	handleRequests(router)

	srv := &http.Server{
		Addr:    ":" + settings.Port,
		Handler: router,
	}

	go func() {
		var err error
		logrus.WithField("port", settings.Port).Info("concordia-courses running...")

		switch settings.AppEnv {
		case "PRD":
			// https://github.com/denji/golang-tls
			err = srv.ListenAndServeTLS(os.Getenv("APP_CERTFILE"), os.Getenv("APP_KEYFILE"))
		default:
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logrus.Fatal(err)
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Error(err)
	}
}
