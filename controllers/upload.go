package controllers

import (
	"bytes"
	"concordia-courses/environment"
	"concordia-courses/models"
	"crypto/subtle"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// max. size of a bulk file
const maxUploadSize = 32 << 20

// UploadReviews imports a JSON array of reviews (multipart "file"); protected by ?key=
func UploadReviews(c *gin.Context) {

	key := environment.Env.Settings.UploadKey
	given := c.Query("key")
	if key == "" || subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
		c.String(http.StatusUnauthorized, "Invalid key")
		return
	}

	fail := func(err error) {
		logrus.WithField("path", c.FullPath()).Errorf("Error processing reviews file: %v", err)
		c.String(http.StatusInternalServerError, "Error processing reviews file")
	}

	// single file
	header, err := c.FormFile("file")
	if err != nil {
		fail(err)
		return
	}

	file, err := header.Open()
	if err != nil {
		fail(err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		fail(err)
		return
	}

	ctx := c.Request.Context()

	// keep the raw file, the import may be repeated from there
	objectName, err := environment.Env.Archiver.Store(ctx, filepath.Base(header.Filename), data)
	if err != nil {
		fail(err)
		return
	}

	reviews, err := models.ParseUpload(bytes.NewReader(data))
	if err != nil {
		fail(err)
		return
	}

	n, err := environment.Env.Reviews.Import(ctx, reviews)
	if err != nil {
		fail(err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"file":     header.Filename,
		"archived": objectName,
		"rows":     len(reviews),
		"written":  n,
	}).Info("reviews imported")

	c.String(http.StatusOK, "Reviews processed successfully")
}
