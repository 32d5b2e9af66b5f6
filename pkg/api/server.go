// Package api provides the REST API server for projectconverter
package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/git-moss/ProjectConverter-sub001/pkg/converter"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title ProjectConverter API
// @version 1.0
// @description API for converting between Reaper and dawproject formats
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/rpp2dawproject", handleReaperToDawProject)
		v1.POST("/convert/dawproject2rpp", handleDawProjectToReaper)
		v1.GET("/formats", listFormats)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "projectconverter",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"rpp", "dawproject"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// handleReaperToDawProject godoc
// @Summary Convert .rpp to .dawproject
// @Description Upload a Reaper project and receive a dawproject container
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "Reaper project to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/rpp2dawproject [post]
func handleReaperToDawProject(c *gin.Context) {
	handleConversion(c, ".rpp", ".dawproject")
}

// handleDawProjectToReaper godoc
// @Summary Convert .dawproject to .rpp
// @Description Upload a dawproject container and receive a Reaper project
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "dawproject container to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/dawproject2rpp [post]
func handleDawProjectToReaper(c *gin.Context) {
	handleConversion(c, ".dawproject", ".rpp")
}

// handleConversion runs one upload through the file converter. The upload
// is staged in a per-request scratch directory so extracted media is
// cleaned up together with the output.
func handleConversion(c *gin.Context, fromExt, toExt string) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	scratch, err := os.MkdirTemp("", "projectconverter-*")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stage upload"})
		return
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	base := filepath.Base(header.Filename)
	if filepath.Ext(base) == "" {
		base += fromExt
	}
	inputPath := filepath.Join(scratch, base)
	if err := c.SaveUploadedFile(header, inputPath); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	outputName := base[:len(base)-len(filepath.Ext(base))] + toExt
	outputPath := filepath.Join(scratch, outputName)

	if err := converter.ConvertFile(c.Request.Context(), inputPath, outputPath, converter.NopNotifier{}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.FileAttachment(outputPath, outputName)
}
