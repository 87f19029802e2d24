// Package api serves the read-only query surface over the change log and
// snapshot stores. It never writes; the poll cycle is the only writer.
package api

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/ddd/discovery-tracker/changelog"
	"github.com/ddd/discovery-tracker/snapshot"
)

// Server exposes the tracker's query endpoints.
type Server struct {
	snapshots *snapshot.Store
	changes   *changelog.Store
	log       *zap.Logger
	router    *httprouter.Router
	start     time.Time
}

func NewServer(snapshots *snapshot.Store, changes *changelog.Store, log *zap.Logger) *Server {
	s := &Server{
		snapshots: snapshots,
		changes:   changes,
		log:       log,
		router:    httprouter.New(),
		start:     time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/api/status", s.handleStatus)
	s.router.GET("/api/changes", s.handleAllChanges)
	s.router.GET("/api/changes/:service", s.handleServiceChanges)
	s.router.GET("/api/changes/:service/:timestamp", s.handleSpecificChange)
	s.router.GET("/api/changes/:service/:timestamp/diff", s.handleDiffFormat)
}

// Handler returns the HTTP handler for use with a custom server.
func (s *Server) Handler() http.Handler {
	return s.router
}
