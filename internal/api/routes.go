// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/expense-assistant/backend/internal/llm"
	"github.com/expense-assistant/backend/internal/retrieval"
	"github.com/expense-assistant/backend/internal/storage"
	"github.com/expense-assistant/backend/internal/vectorindex"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Ingestor  Ingestor
	Assembler *retrieval.Assembler
	Generator llm.Generator
	Pinger    llm.Pinger
	Index     vectorindex.Index
	Store     storage.Store
	Version   string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Upload UploadHandler
	Chat   ChatHandler
	Chunks ChunksHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version, deps.Pinger),
		Upload: NewUploadHandler(deps.Ingestor, deps.Store),
		Chat:   NewChatHandler(deps.Assembler, deps.Generator),
		Chunks: NewChunksHandler(deps.Index),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.HTTPErrorHandler = ErrorHandler

	apiGroup := e.Group("/api")

	apiGroup.GET("/health", handlers.Health.HandleHealth)

	expensesGroup := apiGroup.Group("/expenses")
	expensesGroup.POST("/upload", handlers.Upload.HandleUploadExpenses)
	expensesGroup.GET("/:userId/files", handlers.Upload.HandleRecentFiles)
	expensesGroup.GET("/:userId/chunks", handlers.Chunks.HandleGetChunks)
	expensesGroup.GET("/:userId/chunks/msgpack", handlers.Chunks.HandleGetChunksMsgpack)

	apiGroup.POST("/chat", handlers.Chat.HandleChat)
}
