package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/reportgate/reportgate/internal/access/entity"
	"github.com/reportgate/reportgate/internal/pkg/clock"
	"github.com/reportgate/reportgate/internal/pkg/config"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
	"github.com/reportgate/reportgate/internal/pkg/goroutine"
	"github.com/reportgate/reportgate/internal/pkg/hash"
	"github.com/reportgate/reportgate/internal/pkg/instrument"
	"github.com/reportgate/reportgate/internal/pkg/jwt"
	"github.com/reportgate/reportgate/internal/pkg/otp"
	"github.com/reportgate/reportgate/internal/pkg/throttle"
	"github.com/reportgate/reportgate/internal/pkg/uid"
	"github.com/reportgate/reportgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type ChallengeIssuedEvent struct {
	ChallengeID      int64
	RecipientEmail   string
	Purpose          entity.ChallengePurpose
	Code             string
	ExpiresInSeconds int64
}

type repoMessaging interface {
	PublishChallengeIssued(ctx context.Context, msg ChallengeIssuedEvent) error
}

type repoDB interface {
	GetChallengeByID(ctx context.Context, id int64) (*entity.Challenge, error)
	NewChallenge(ctx context.Context, ch entity.Challenge) error
	MarkChallengeExpired(ctx context.Context, id int64) (bool, error)
	MarkChallengeVerified(ctx context.Context, id int64) (bool, error)
	RecordFailedAttempt(ctx context.Context, id int64) (*entity.Challenge, error)

	GetGrantByID(ctx context.Context, id int64) (*entity.Grant, error)
	GetGrantForResource(ctx context.Context, email string, resourceID int64) (*entity.Grant, error)
	GetGrantsByRecipient(ctx context.Context, email string) ([]entity.GrantResource, error)
	NewGrant(ctx context.Context, g entity.Grant) error
	RevokeGrant(ctx context.Context, id int64, at time.Time) (bool, error)
	IncrementGrantViewCount(ctx context.Context, id int64) error

	NewSession(ctx context.Context, s entity.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error)

	GetResourceByID(ctx context.Context, id int64) (*entity.Resource, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	throttle      throttle.Throttler
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	argon2id      hash.Hash
	code          otp.Generator
	uid           uid.NumberID
	oid           uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	enforcer      *casbin.Enforcer
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Throttle      throttle.Throttler
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Argon2ID      hash.Hash
	Code          otp.Generator
	UID           uid.NumberID
	OID           uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Enforcer      *casbin.Enforcer
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		throttle:      dep.Throttle,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		argon2id:      dep.Argon2ID,
		code:          dep.Code,
		uid:           dep.UID,
		oid:           dep.OID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("access.usecase").Start(ctx, name)
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.enforcer.Enforce(clm.Subject, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.Subject, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}

// resolveSession loads and checks the guest session behind a raw token.
// Unknown and lapsed tokens are indistinguishable to the caller.
func (s *Usecase) resolveSession(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, goerror.NewBusiness("Guest session required", goerror.CodeUnauthorized)
	}

	tokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session token", "error", err)
		return nil, goerror.NewServer(err)
	}

	sess, err := s.repoDB.GetSessionByTokenHash(ctx, string(tokenHash))
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Invalid or expired session", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get session by token hash", "error", err)
		return nil, goerror.NewServer(err)
	}

	if sess.IsExpiredAt(s.clock.Now()) {
		return nil, goerror.NewBusiness("Invalid or expired session", goerror.CodeUnauthorized)
	}

	return sess, nil
}
