package web

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version は /health で返すバージョンです。
const Version = "0.1.0"

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "user-portal",
		"version": Version,
	})
}

// getData は GET /api/data のハンドラーです。
func getData(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "GET request successful",
		"data":    "Sample data",
	})
}

// postData は POST /api/data のハンドラーです。受け取った JSON をそのまま返します。
// 数値の精度を保つため、デコードせずに生の JSON として返します。
func postData(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "request body must be valid JSON",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "POST request successful",
		"data":    json.RawMessage(body),
	})
}
