// Package utils holds response helpers shared by the settings controllers.
// Error bodies use the same {"error": {"message": ...}} shape as the main
// API so clients can reuse their error parsing.
package utils

import (
	"github.com/gin-gonic/gin"
)

// JSON writes v as the response body with the given status
func JSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

// Error writes an error envelope with the given status and message
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": gin.H{"message": message}})
}
