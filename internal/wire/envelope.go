package wire

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the single response shape the API speaks. rt mirrors the HTTP
// status; rtMsg carries a human-readable message, "OK" on success.
type Envelope struct {
	RT       int    `json:"rt"`
	RTMsg    string `json:"rtMsg"`
	Response any    `json:"response,omitempty"`
}

func OK(c *gin.Context, response any) {
	c.JSON(http.StatusOK, Envelope{RT: http.StatusOK, RTMsg: "OK", Response: response})
}

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{RT: status, RTMsg: msg})
}

func AbortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Envelope{RT: status, RTMsg: msg})
}
