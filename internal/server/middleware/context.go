package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/nwsirlp/skillgraph/pkg/ai"
	"github.com/nwsirlp/skillgraph/pkg/assist"
	"github.com/nwsirlp/skillgraph/pkg/match"
	"github.com/nwsirlp/skillgraph/pkg/store"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

// App holds the long-lived collaborators every handler reaches through the
// request context. It is built once in server.Init; Queue, Key and S3 may be
// nil when the corresponding backend is not configured.
type App struct {
	Store        store.Storage
	Queue        *amqp091.Channel
	Key          *keyfunc.Keyfunc
	S3           *s3.Client
	AiClient     ai.AIClient
	Matcher      *match.Engine
	Assistant    *assist.Assistant
	MasterAPIKey string
	AuthDisabled bool
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
