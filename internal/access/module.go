package access

import (
	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/reportgate/reportgate/internal/access/inbound"
	"github.com/reportgate/reportgate/internal/access/outbound/db"
	"github.com/reportgate/reportgate/internal/access/outbound/mq"
	"github.com/reportgate/reportgate/internal/access/usecase"
	"github.com/reportgate/reportgate/internal/pkg/clock"
	"github.com/reportgate/reportgate/internal/pkg/config"
	"github.com/reportgate/reportgate/internal/pkg/goroutine"
	"github.com/reportgate/reportgate/internal/pkg/hash"
	"github.com/reportgate/reportgate/internal/pkg/instrument"
	"github.com/reportgate/reportgate/internal/pkg/messaging"
	"github.com/reportgate/reportgate/internal/pkg/otp"
	"github.com/reportgate/reportgate/internal/pkg/router"
	"github.com/reportgate/reportgate/internal/pkg/throttle"
	"github.com/reportgate/reportgate/internal/pkg/uid"
	"github.com/reportgate/reportgate/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Enforcer   *casbin.Enforcer           `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Throttle   throttle.Throttler         `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	OID        uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Argon2ID   hash.Hash                  `validate:"required"`
	Code       otp.Generator              `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAccess := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAccess,
		RepoMessaging: repoMsg,
		Throttle:      dep.Throttle,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Argon2ID:      dep.Argon2ID,
		Code:          dep.Code,
		UID:           dep.UID,
		OID:           dep.OID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
