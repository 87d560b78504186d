package http

import "github.com/gin-gonic/gin"

// ErrorResponse 写出 {"error": message}
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

func SuccessResponse(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// MessageResponse 写出 {"message": message}
func MessageResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}
