package gallery

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NethermindEth/genaiterest/pkg/gallery/events"
	"github.com/NethermindEth/genaiterest/pkg/gallery/style"
)

//go:embed templates/index.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

const eventBuffer = 64

type StyleView struct {
	Category style.Category `json:"category"`
	Name     string         `json:"name"`
}

type createGalleryRequest struct {
	Categories []style.Category `json:"categories" binding:"required,min=1"`
}

type createGalleryResponse struct {
	ID      string `json:"id"`
	Columns int    `json:"columns"`
}

func (s *Server) generateRouter() *gin.Engine {
	router := gin.Default()
	router.SetHTMLTemplate(pageTemplate)

	router.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"Title":      "GenAIterest",
			"Categories": style.All(),
			"Columns":    s.pipelineOptions.Columns,
		})
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := router.Group("/api")

	api.GET("/styles", func(c *gin.Context) {
		c.JSON(http.StatusOK, Styles())
	})

	api.POST("/galleries", func(c *gin.Context) {
		var req createGalleryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		session, err := s.StartGallery(style.Dedupe(req.Categories))
		if errors.Is(err, ErrServerClosing) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusAccepted, createGalleryResponse{ID: session.ID, Columns: session.Columns})
	})

	api.GET("/galleries/:id", func(c *gin.Context) {
		session, ok := s.lookupSession(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, session.Snapshot())
	})

	api.GET("/galleries/:id/events", func(c *gin.Context) {
		session, ok := s.lookupSession(c)
		if !ok {
			return
		}
		s.streamEvents(c, session)
	})

	api.GET("/galleries/:id/images/:slot", func(c *gin.Context) {
		session, ok := s.lookupSession(c)
		if !ok {
			return
		}

		slot, err := strconv.Atoi(c.Param("slot"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
			return
		}

		data, ok := session.Image(slot)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}

		c.Data(http.StatusOK, "image/png", data)
	})

	return router
}

func (s *Server) GetRouter() *gin.Engine {
	return s.apiRouter
}

func (s *Server) lookupSession(c *gin.Context) (*Session, bool) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "gallery not found"})
		return nil, false
	}
	return session, true
}

// streamEvents replays the cells rendered so far, then forwards new ones
// until the gallery is done. Cells are keyed by slot so none is sent twice.
func (s *Server) streamEvents(c *gin.Context, session *Session) {
	ch := make(chan events.Event, eventBuffer)
	s.hub.Subscribe(ch, session.ID)
	defer s.hub.Unsubscribe(ch, session.ID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	sent := make(map[int]bool)
	sendCells := func(cells []CellView) {
		for _, cell := range cells {
			if sent[cell.Slot] {
				continue
			}
			sent[cell.Slot] = true
			c.SSEvent(EventCell, cell)
		}
	}
	finish := func() bool {
		snapshot := session.Snapshot()
		sendCells(snapshot.Cells)
		c.SSEvent(EventDone, snapshot)
		return false
	}

	snapshot := session.Snapshot()
	sendCells(snapshot.Cells)
	if snapshot.Status != StatusRunning {
		finish()
		return
	}
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-ch:
			if event.Name == EventDone {
				return finish()
			}
			if cell, ok := event.Data.(CellView); ok {
				sendCells([]CellView{cell})
			}
			return true
		case <-session.Done():
			return finish()
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// StartServer serves the router in the background until ctx is done.
func (s *Server) StartServer(ctx context.Context) error {
	slog.Info("starting server", "port", s.apiIpPort)

	if s.apiIpPort == "" {
		slog.Info("api ip port is empty, skipping server")
		return nil
	}

	server := &http.Server{
		Addr:    s.apiIpPort,
		Handler: s.apiRouter,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	return nil
}

func Styles() []StyleView {
	categories := style.All()
	views := make([]StyleView, 0, len(categories))
	for _, c := range categories {
		def, err := style.Lookup(c)
		if err != nil {
			continue
		}
		views = append(views, StyleView{Category: c, Name: def.Name})
	}
	return views
}
