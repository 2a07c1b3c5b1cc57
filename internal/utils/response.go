package utils

import "github.com/gin-gonic/gin"

// Success writes {"success": true, "data": data} with status 200.
func Success(c *gin.Context, data gin.H) {
	c.JSON(200, gin.H{
		"success": true,
		"data":    data,
	})
}

// Error writes {"success": false, "error": msg}.
func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   msg,
	})
}

// Failure is Error with a payload, for failed operations whose record is
// still useful to the caller.
func Failure(c *gin.Context, code int, msg string, data gin.H) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   msg,
		"data":    data,
	})
}
