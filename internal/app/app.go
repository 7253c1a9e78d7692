package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/reportgate/reportgate/internal/pkg/clock"
	"github.com/reportgate/reportgate/internal/pkg/config"
	"github.com/reportgate/reportgate/internal/pkg/goroutine"
	"github.com/reportgate/reportgate/internal/pkg/hash"
	"github.com/reportgate/reportgate/internal/pkg/instrument"
	"github.com/reportgate/reportgate/internal/pkg/jwt"
	"github.com/reportgate/reportgate/internal/pkg/mail"
	"github.com/reportgate/reportgate/internal/pkg/messaging"
	"github.com/reportgate/reportgate/internal/pkg/otp"
	"github.com/reportgate/reportgate/internal/pkg/router"
	"github.com/reportgate/reportgate/internal/pkg/throttle"
	"github.com/reportgate/reportgate/internal/pkg/uid"
	"github.com/reportgate/reportgate/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	argon2id  hash.Hash
	code      otp.Generator
	uid       uid.NumberID
	oid       uid.StringID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	throttle  throttle.Throttler
	mail      mail.Mail
	messaging messaging.Messaging
	casbin    *casbin.Enforcer

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initCasbin()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
