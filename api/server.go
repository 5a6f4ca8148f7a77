package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moyoez/deeddesk-go/api/controllers"
	"github.com/moyoez/deeddesk-go/api/middlewares"
	"github.com/moyoez/deeddesk-go/api/models"
	"github.com/moyoez/deeddesk-go/api/notifyhub"
	"github.com/moyoez/deeddesk-go/preview"
	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/types"
	"github.com/moyoez/deeddesk-go/uploader"
)

// SelfAPIPrefix is where the local upload page API lives.
const SelfAPIPrefix = "/api/self/v1"

// Server is the local HTTP API in front of one upload manager.
type Server struct {
	port     int
	manager  *uploader.Manager
	previews *preview.Registry

	submitRate float64
	gatherer   prometheus.Gatherer

	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex
}

// NewServer wires manager, its preview registry and an optional notify hub into a server on port.
func NewServer(port int, manager *uploader.Manager, previews *preview.Registry, hub *notifyhub.Hub) *Server {
	models.SetNotifyHub(hub)
	return &Server{
		port:     port,
		manager:  manager,
		previews: previews,
		gatherer: prometheus.DefaultGatherer,
	}
}

// SetSubmitRate limits mutating routes to perSecond requests. Zero disables limiting.
func (s *Server) SetSubmitRate(perSecond float64) {
	s.submitRate = perSecond
}

// SetGatherer chooses what /metrics exposes (prometheus.DefaultGatherer by default).
func (s *Server) SetGatherer(g prometheus.Gatherer) {
	if g != nil {
		s.gatherer = g
	}
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.MaxMultipartMemory = controllers.MaxMultipartMemory
	engine.Use(gin.Recovery(), middlewares.Tracing())

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	uploadCtrl := controllers.NewUploadController(s.manager)
	previewCtrl := controllers.NewPreviewController(s.previews)
	configCtrl := controllers.NewConfigController(s.manager)
	limited := middlewares.RateLimit(middlewares.NewLimiter(s.submitRate))

	hub := models.GetNotifyHub()

	self := engine.Group(SelfAPIPrefix, middlewares.OnlyAllowLocal)
	{
		self.GET("/state", uploadCtrl.HandleState)                    // Render snapshot
		self.POST("/files", limited, uploadCtrl.HandleAddFiles)       // Multipart "files" parts
		self.POST("/files/paths", limited, uploadCtrl.HandleAddPaths) // file:/// urls or plain paths
		self.DELETE("/files/:index", uploadCtrl.HandleRemove)
		self.DELETE("/files", uploadCtrl.HandleClear)
		self.POST("/reset", uploadCtrl.HandleReset)
		self.POST("/submit", limited, uploadCtrl.HandleSubmit) // 202, 400 nothing selected, 409 busy
		self.GET("/uploads/:id", controllers.HandleReceipt)
		self.GET("/preview/:token", previewCtrl.HandlePreview)
		self.GET("/create-qr-code", controllers.GenerateQRCode) // QR code PNG (same params as api.qrserver.com)
		self.GET("/status", uploadCtrl.HandleStatus(hub != nil))
		self.GET("/config", configCtrl.HandleConfigGet)
		self.PATCH("/config", limited, configCtrl.HandleConfigPatch)
		if hub != nil {
			self.GET("/notify-ws", notifyhub.HandleNotifyWS(hub, s.greeting))
		}
	}
	return engine
}

func (s *Server) greeting() *types.Notification {
	snap := s.manager.Snapshot()
	return &types.Notification{
		Type:    types.NotifyTypeStateChanged,
		Title:   "State",
		Message: string(snap.State.Phase),
		Data:    map[string]any{"snapshot": snap},
	}
}

// Handler builds the routes without listening, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	engine := s.setupRoutes()

	s.mu.Lock()
	s.engine = engine
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting API server on %s", tool.BuildLocalURL(s.port, SelfAPIPrefix))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve local API: %v", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones up to ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
