// Package server exposes a note display over HTTP so a browser front end can
// fetch block geometry and post drops.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"go-noteroll/debug"
	"go-noteroll/display"
	"go-noteroll/render"
	"go-noteroll/sequence"
)

// Server owns one display. Every request touching it holds mu, so the
// display sees the single-threaded event order it expects.
type Server struct {
	mu      sync.Mutex
	seq     *sequence.Sequence
	surface *display.Container
	display *display.NoteDisplay
	session string
	engine  *gin.Engine
	encode  func(io.Writer, *display.Container) error
}

// BlockJSON is one rendered block
type BlockJSON struct {
	ID    int               `json:"id"`
	Rect  display.Rect      `json:"rect"`
	Style map[string]string `json:"style"`
	Note  *sequence.Note    `json:"note"`
}

// DropRequest mirrors a browser drop: the drag payload plus the drop point
// relative to the note surface
type DropRequest struct {
	Data map[string]string `json:"data" binding:"required"`
	X    float64           `json:"x"`
	Y    float64           `json:"y"`
}

func New(seq *sequence.Sequence, opts ...display.Option) (*Server, error) {
	surface := display.NewContainer()
	d, err := display.New(surface, seq, opts...)
	if err != nil {
		return nil, err
	}
	d.DrawNotes()

	s := &Server{
		seq:     seq,
		surface: surface,
		display: d,
		session: uuid.New().String(),
		encode:  render.PNG,
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog())

	r.GET("/health", s.health)
	r.GET("/snapshot.png", s.snapshot)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", s.health)
		v1.GET("/notes", s.listNotes)
		v1.GET("/blocks", s.listBlocks)
		v1.POST("/drop", s.drop)
	}
	return r
}

// Handler returns the router wrapped with CORS handling
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.engine)
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		debug.Log("server", "listening on %s session=%s", addr, s.session)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		debug.Log("http", "%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "noteroll",
		"session": s.session,
	})
}

func (s *Server) listNotes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tempo": s.seq.Tempo(),
		"notes": s.seq.Snapshot(),
	})
}

// listBlocks renders the window again and returns the new blocks
func (s *Server) listBlocks(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.display.DrawNotes()
	c.JSON(http.StatusOK, gin.H{
		"window": s.display.Window(),
		"blocks": s.blocksJSON(),
	})
}

func (s *Server) drop(c *gin.Context) {
	var req DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dt := display.NewDataTransfer()
	for k, v := range req.Data {
		dt.SetData(k, v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	over := &display.DragEvent{Type: display.DragOver, X: req.X, Y: req.Y, DataTransfer: dt}
	s.display.DragOver(over)
	if !over.DefaultPrevented() {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error": fmt.Sprintf("payload has no %s entry", display.NoteIDType),
		})
		return
	}

	ev := &display.DragEvent{Type: display.Drop, X: req.X, Y: req.Y, DataTransfer: dt}
	if err := s.display.Drop(ev); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	s.display.DrawNotes()
	c.JSON(http.StatusOK, gin.H{
		"beat":   s.display.BeatAt(req.X),
		"blocks": s.blocksJSON(),
	})
}

func (s *Server) snapshot(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := s.encode(&buf, s.surface); err != nil {
		debug.Log("server", "snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// blocksJSON must be called with mu held
func (s *Server) blocksJSON() []BlockJSON {
	blocks := s.display.Blocks()
	out := make([]BlockJSON, 0, len(blocks))
	for _, b := range blocks {
		n, _ := s.display.Note(b.ID)
		out = append(out, BlockJSON{
			ID:    b.ID,
			Rect:  b.Element.Rect,
			Style: b.Element.Styles(),
			Note:  n,
		})
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, display.ErrUnknownBlockID):
		return http.StatusNotFound
	case errors.Is(err, display.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, sequence.ErrNegativeStart), errors.Is(err, sequence.ErrNoteNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
