// Package server is the prediction web app: one HTML form plus a small
// JSON API over the same predictor.
package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"

	"smesales/internal/config"
	"smesales/internal/model"
	"smesales/internal/service/predict"
)

var log = logging.MustGetLogger("server")

//go:embed templates/*.gohtml
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Server HTTP server
type Server struct {
	router    *gin.Engine
	predictor *predict.Predictor
	title     string
}

// NewServer builds the router around an already loaded predictor.
func NewServer(cfg *config.AppConfig, predictor *predict.Predictor) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"num": model.FormatNumber,
	}).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), accessLog())
	router.SetHTMLTemplate(tmpl)

	s := &Server{
		router:    router,
		predictor: predictor,
		title:     "SME Monthly Sales Predictor",
	}
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.GET("/", s.index)
	s.router.POST("/predict", s.predictForm)
	s.router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := s.router.Group("/api")
	{
		api.GET("/model", s.modelInfo)
		api.POST("/predict", s.predictJSON)
	}

	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	s.router.StaticFS("/static", http.FS(sub))
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until the process exits.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infof("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
