package server

import (
	"net"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cropsight/internal/predictor"
)

// Server is the HTTP surface over the prediction pipeline. The pipeline is
// injected once at construction and never replaced.
type Server struct {
	host      string
	port      string
	predictor *predictor.Service
	maxBatch  int
	maxTopK   int
	logger    *zap.Logger
}

func New(host, port string, svc *predictor.Service, maxBatch, maxTopK int, logger *zap.Logger) *Server {
	return &Server{
		host:      host,
		port:      port,
		predictor: svc,
		maxBatch:  maxBatch,
		maxTopK:   maxTopK,
		logger:    logger.Named("server"),
	}
}

func (r *Server) Start() error {
	api := r.newAPI()

	return api.Run(net.JoinHostPort(r.host, r.port))
}

func (r *Server) newAPI() *gin.Engine {
	eng := gin.New()
	eng.Use(gin.Recovery(), r.requestLogger())

	apiV1 := eng.Group("/v1")
	apiV1.GET("/health", r.health)
	apiV1.GET("/model", r.modelInfo)
	apiV1.GET("/classes", r.classes)
	apiV1.GET("/diseases/search", r.searchDiseases)
	apiV1.POST("/predict", r.predict)
	apiV1.POST("/predict/batch", r.predictBatch)

	return eng
}

func (r *Server) requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		r.logger.Info("http request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
