// Package api contains all endpoints available
package api

import (
	"bitwise74/file-vault/blob"
	"bitwise74/file-vault/db"
	"bitwise74/file-vault/internal"
	"bitwise74/file-vault/internal/service"
	"bitwise74/file-vault/pkg/middleware"
	"fmt"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	Router *gin.Engine
	Deps   *internal.Deps
}

func NewRouter() (*API, error) {
	a := &API{
		Deps: &internal.Deps{},
	}

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.Deps.DB = conn

	blobs, err := blob.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage, %w", err)
	}
	a.Deps.Blobs = blobs

	a.Deps.Uploader = service.NewUploader(conn, blobs)
	a.Deps.Downloader = service.NewDownloader(conn, blobs)

	makeLogger()

	router := gin.New()
	a.Router = router

	origins := strings.Split(viper.GetString("host.cors"), ",")

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	jwt := middleware.NewJWTMiddleware()
	rateLimit := viper.GetInt("security.rate_limit")
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
		CleanupInterval:   time.Second,
	})

	maxUploadSize := viper.GetInt64("upload.max_size")
	maxLitterboxSize := viper.GetInt64("litterbox.max_size")

	main := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	files := main.Group("/files")
	{
		// GET /api/files 			-> Returns the caller's non-expired files
		files.GET("", jwt, a.FileList)

		// POST /api/files 			-> Uploads a new file (regular tier)
		files.POST("", jwt, middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// GET /api/files/:code/info 		-> Public projection of a file, no content
		files.GET("/:code/info", a.FileInfo)

		// POST /api/files/:code/download	-> Decrypts and serves a file by its code
		files.POST("/:code/download", a.FileDownload)

		// PUT /api/files/:code 		-> Updates password/expiry of an owned file
		files.PUT("/:code", jwt, a.FileEdit)

		// DELETE /api/files/:code 		-> Deletes an owned file, blob first
		files.DELETE("/:code", jwt, a.FileDelete)
	}

	litter := main.Group("/litterbox")
	{
		// POST /api/litterbox 			-> Uploads a new always-expiring file
		litter.POST("", jwt, middleware.BodySizeLimiter(maxLitterboxSize), a.LitterboxUpload)
	}

	// Lapsed litterbox files still hold ciphertext until swept
	service.ExpiredCleanup(10*time.Minute, conn, blobs)

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
