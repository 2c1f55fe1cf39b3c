package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/NethermindEth/genaiterest/pkg/gallery/events"
	"github.com/NethermindEth/genaiterest/pkg/gallery/inference"
	"github.com/NethermindEth/genaiterest/pkg/gallery/pipeline"
	"github.com/NethermindEth/genaiterest/pkg/gallery/setup"
	"github.com/NethermindEth/genaiterest/pkg/gallery/style"
)

type Server struct {
	ctx       context.Context
	client    inference.Client
	hub       *events.Hub
	apiRouter *gin.Engine

	sessions *expirable.LRU[string, *Session]

	pipelineOptions   pipeline.Options
	generationTimeout time.Duration
	apiIpPort         string

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

var ErrServerClosing = errors.New("server is shutting down")

type ServerConfig struct {
	Client          inference.Client
	PipelineOptions pipeline.Options

	GenerationTimeout time.Duration
	SessionTTL        time.Duration
	ApiIpPort         string
}

const (
	sessionCacheSize         = 1000
	defaultSessionTTL        = 1 * time.Hour
	defaultGenerationTimeout = 10 * time.Minute
)

// NewServer creates the gallery service. Galleries keep generating until
// they finish or ctx is done, independent of the request that started them.
func NewServer(ctx context.Context, config *ServerConfig) (*Server, error) {
	if config == nil {
		return nil, errors.New("config is nil")
	}
	if config.Client == nil {
		return nil, errors.New("client is nil")
	}

	if config.SessionTTL <= 0 {
		config.SessionTTL = defaultSessionTTL
	}
	if config.GenerationTimeout <= 0 {
		config.GenerationTimeout = defaultGenerationTimeout
	}
	if config.PipelineOptions.Columns <= 0 {
		config.PipelineOptions.Columns = pipeline.DefaultColumns
	}

	hub := events.NewHub()
	go hub.Run(ctx)

	server := &Server{
		ctx:    ctx,
		client: config.Client,
		hub:    hub,

		sessions: expirable.NewLRU[string, *Session](sessionCacheSize, nil, config.SessionTTL),

		pipelineOptions:   config.PipelineOptions,
		generationTimeout: config.GenerationTimeout,
		apiIpPort:         config.ApiIpPort,
	}

	server.apiRouter = server.generateRouter()

	return server, nil
}

func NewServerConfigFromSetupResult(setupResult *setup.SetupResult, client inference.Client) (*ServerConfig, error) {
	if setupResult == nil {
		return nil, errors.New("setup result is nil")
	}

	return &ServerConfig{
		Client:            client,
		PipelineOptions:   setupResult.PipelineOptions(),
		GenerationTimeout: setupResult.Config.GenerationTimeout,
		SessionTTL:        setupResult.Config.SessionTTL,
		ApiIpPort:         setupResult.Config.ApiIpPort,
	}, nil
}

// Start serves the API until ctx is done, then waits for running galleries.
func (s *Server) Start(ctx context.Context) error {
	if err := s.StartServer(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	s.Wait()
	return ctx.Err()
}

// Wait blocks until every started gallery has finished.
// New galleries are rejected once Wait has been called.
func (s *Server) Wait() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	s.wg.Wait()
}

// StartGallery registers a session and generates it in the background.
func (s *Server) StartGallery(categories []style.Category) (*Session, error) {
	if len(categories) == 0 {
		return nil, errors.New("no categories selected")
	}
	for _, c := range categories {
		if _, err := style.Lookup(c); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing || s.ctx.Err() != nil {
		return nil, ErrServerClosing
	}

	session := newSession(uuid.NewString(), categories, s.pipelineOptions.Columns, s.hub)
	s.sessions.Add(session.ID, session)

	s.wg.Add(1)
	go s.generate(session)

	return session, nil
}

func (s *Server) generate(session *Session) {
	defer s.wg.Done()

	logger := slog.With("gallery", session.ID)
	logger.Info("generating gallery", "categories", session.Categories)

	ctx, cancel := context.WithTimeout(s.ctx, s.generationTimeout)
	defer cancel()

	opts := s.pipelineOptions
	opts.Logger = logger

	coordinator := pipeline.NewCoordinator(s.client, opts)
	report, err := coordinator.Generate(ctx, session.Categories, session)
	if err != nil {
		logger.Error("failed to generate gallery", "error", err)
		err = fmt.Errorf("failed to generate gallery: %w", err)
	}

	session.finish(report, err)
}

func (s *Server) Session(id string) (*Session, bool) {
	return s.sessions.Get(id)
}
