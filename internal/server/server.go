package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nwsirlp/skillgraph/internal/queue"
	mid "github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/internal/storage"
	"github.com/nwsirlp/skillgraph/internal/util"
	"github.com/nwsirlp/skillgraph/pkg/ai"
	"github.com/nwsirlp/skillgraph/pkg/ai/local"
	"github.com/nwsirlp/skillgraph/pkg/ai/mock"
	oll "github.com/nwsirlp/skillgraph/pkg/ai/ollama"
	oai "github.com/nwsirlp/skillgraph/pkg/ai/openai"
	"github.com/nwsirlp/skillgraph/pkg/assist"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/match"
	"github.com/nwsirlp/skillgraph/pkg/store"
	"github.com/nwsirlp/skillgraph/pkg/store/memory"
	pgstore "github.com/nwsirlp/skillgraph/pkg/store/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewAIClient builds the AI adapter selected by AI_ADAPTER. Remote adapters
// are wrapped so that a failed embedding call falls back to the local
// deterministic embedder instead of failing the search.
func NewAIClient() ai.AIClient {
	adapter := util.GetEnvString("AI_ADAPTER", "local")

	switch adapter {
	case "mock":
		return mock.NewMockClient(mock.NewMockClientParams{})
	case "openai":
		client := oai.NewOpenAIClient(oai.NewOpenAIClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),

			EmbeddingDimensions: int(util.GetEnvNumeric("AI_EMBED_DIMENSIONS", 0)),
			MaxParallelEmbeds:   int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		fallback := local.NewLocalClient(local.NewLocalClientParams{
			Dimensions: client.EmbeddingDimensions(),
		})
		return ai.WithEmbedFallback(client, fallback)
	case "ollama":
		client, err := oll.NewOllamaClient(oll.NewOllamaClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			EmbeddingDimensions:   int(util.GetEnvNumeric("AI_EMBED_DIMENSIONS", 0)),
			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		fallback := local.NewLocalClient(local.NewLocalClientParams{
			Dimensions: client.EmbeddingDimensions(),
		})
		return ai.WithEmbedFallback(client, fallback)
	default:
		return local.NewLocalClient(local.NewLocalClientParams{
			Dimensions: int(util.GetEnvNumeric("AI_EMBED_DIMENSIONS", 0)),
		})
	}
}

// NewStore connects the backend selected by STORE_BACKEND. The Postgres
// backend registers pgvector types on every connection and bootstraps the
// schema; dims must match the AI adapter's embedding width.
func NewStore(ctx context.Context, dims int) store.Storage {
	backend := util.GetEnvString("STORE_BACKEND", "memory")

	switch backend {
	case "postgres":
		cfg, err := pgxpool.ParseConfig(util.GetEnv("DATABASE_URL"))
		if err != nil {
			logger.Fatal("Failed to parse database url", "err", err)
		}
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return pgxvec.RegisterTypes(ctx, conn)
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}

		st := pgstore.NewStore(pool)
		if err := st.EnsureSchema(ctx, dims); err != nil {
			logger.Fatal("Failed to ensure database schema", "err", err)
		}
		return st
	default:
		return memory.NewStore()
	}
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiClient := NewAIClient()

	st := NewStore(ctx, aiClient.EmbeddingDimensions())
	defer st.Close()

	authDisabled := util.GetEnvBool("AUTH_DISABLED", false)
	var key *keyfunc.Keyfunc
	if !authDisabled {
		jwksUrl := util.GetEnv("AUTH_URL") + "/jwks"
		k, err := keyfunc.NewDefault([]string{jwksUrl})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		key = &k
	}

	engine := match.NewEngine(st, aiClient, match.DefaultConfig())

	var assistOpts []assist.AssistantOption
	if util.GetEnvBool("AI_INTENT_ONLY", false) {
		assistOpts = append(assistOpts, assist.WithIntentOnly())
	}
	assistant := assist.NewAssistant(aiClient, st, engine, assistOpts...)

	app := &mid.App{
		Store:        st,
		Key:          key,
		AiClient:     aiClient,
		Matcher:      engine,
		Assistant:    assistant,
		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
		AuthDisabled: authDisabled,
	}

	if util.GetEnv("RABBITMQ_HOST") != "" {
		que := queue.Init()
		defer que.Close()
		channel, err := que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		if err := queue.SetupQueues(channel, []string{queue.EmbedQueue}); err != nil {
			logger.Fatal("Failed to set up queues", "err", err)
		}
		app.Queue = channel
	}

	if util.GetEnv("AWS_BUCKET") != "" {
		app.S3 = storage.NewS3Client(ctx)
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
