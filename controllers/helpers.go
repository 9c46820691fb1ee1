package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Payload is the standard envelope of successful responses
type Payload struct {
	Payload interface{} `json:"payload"`
}

func ok(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, Payload{payload})
}

// queryInt64 reads an optional numeric query parameter
func queryInt64(c *gin.Context, key string) int64 {
	n, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
