package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/reportgate/reportgate/internal/access/entity"
	"github.com/reportgate/reportgate/internal/pkg/config"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
	"github.com/reportgate/reportgate/internal/pkg/instrument"
	"github.com/reportgate/reportgate/internal/pkg/jwt"
	"github.com/reportgate/reportgate/internal/pkg/throttle"
	"github.com/reportgate/reportgate/internal/pkg/validator"
)

type fakeRepoDB struct {
	getChallengeByID        func(ctx context.Context, id int64) (*entity.Challenge, error)
	newChallenge            func(ctx context.Context, ch entity.Challenge) error
	markChallengeExpired    func(ctx context.Context, id int64) (bool, error)
	markChallengeVerified   func(ctx context.Context, id int64) (bool, error)
	recordFailedAttempt     func(ctx context.Context, id int64) (*entity.Challenge, error)
	getGrantByID            func(ctx context.Context, id int64) (*entity.Grant, error)
	getGrantForResource     func(ctx context.Context, email string, resourceID int64) (*entity.Grant, error)
	getGrantsByRecipient    func(ctx context.Context, email string) ([]entity.GrantResource, error)
	newGrant                func(ctx context.Context, g entity.Grant) error
	revokeGrant             func(ctx context.Context, id int64, at time.Time) (bool, error)
	incrementGrantViewCount func(ctx context.Context, id int64) error
	newSession              func(ctx context.Context, s entity.Session) error
	getSessionByTokenHash   func(ctx context.Context, tokenHash string) (*entity.Session, error)
	getResourceByID         func(ctx context.Context, id int64) (*entity.Resource, error)
}

func (f *fakeRepoDB) GetChallengeByID(ctx context.Context, id int64) (*entity.Challenge, error) {
	if f.getChallengeByID == nil {
		return nil, goerror.ErrNotFound
	}
	return f.getChallengeByID(ctx, id)
}

func (f *fakeRepoDB) NewChallenge(ctx context.Context, ch entity.Challenge) error {
	if f.newChallenge == nil {
		return nil
	}
	return f.newChallenge(ctx, ch)
}

func (f *fakeRepoDB) MarkChallengeExpired(ctx context.Context, id int64) (bool, error) {
	if f.markChallengeExpired == nil {
		return true, nil
	}
	return f.markChallengeExpired(ctx, id)
}

func (f *fakeRepoDB) MarkChallengeVerified(ctx context.Context, id int64) (bool, error) {
	if f.markChallengeVerified == nil {
		return true, nil
	}
	return f.markChallengeVerified(ctx, id)
}

func (f *fakeRepoDB) RecordFailedAttempt(ctx context.Context, id int64) (*entity.Challenge, error) {
	if f.recordFailedAttempt == nil {
		return nil, goerror.ErrNotFound
	}
	return f.recordFailedAttempt(ctx, id)
}

func (f *fakeRepoDB) GetGrantByID(ctx context.Context, id int64) (*entity.Grant, error) {
	if f.getGrantByID == nil {
		return nil, goerror.ErrNotFound
	}
	return f.getGrantByID(ctx, id)
}

func (f *fakeRepoDB) GetGrantForResource(ctx context.Context, email string, resourceID int64) (*entity.Grant, error) {
	if f.getGrantForResource == nil {
		return nil, goerror.ErrNotFound
	}
	return f.getGrantForResource(ctx, email, resourceID)
}

func (f *fakeRepoDB) GetGrantsByRecipient(ctx context.Context, email string) ([]entity.GrantResource, error) {
	if f.getGrantsByRecipient == nil {
		return nil, nil
	}
	return f.getGrantsByRecipient(ctx, email)
}

func (f *fakeRepoDB) NewGrant(ctx context.Context, g entity.Grant) error {
	if f.newGrant == nil {
		return nil
	}
	return f.newGrant(ctx, g)
}

func (f *fakeRepoDB) RevokeGrant(ctx context.Context, id int64, at time.Time) (bool, error) {
	if f.revokeGrant == nil {
		return true, nil
	}
	return f.revokeGrant(ctx, id, at)
}

func (f *fakeRepoDB) IncrementGrantViewCount(ctx context.Context, id int64) error {
	if f.incrementGrantViewCount == nil {
		return nil
	}
	return f.incrementGrantViewCount(ctx, id)
}

func (f *fakeRepoDB) NewSession(ctx context.Context, s entity.Session) error {
	if f.newSession == nil {
		return nil
	}
	return f.newSession(ctx, s)
}

func (f *fakeRepoDB) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error) {
	if f.getSessionByTokenHash == nil {
		return nil, goerror.ErrNotFound
	}
	return f.getSessionByTokenHash(ctx, tokenHash)
}

func (f *fakeRepoDB) GetResourceByID(ctx context.Context, id int64) (*entity.Resource, error) {
	if f.getResourceByID == nil {
		return nil, goerror.ErrNotFound
	}
	return f.getResourceByID(ctx, id)
}

type fakeMessaging struct {
	published []ChallengeIssuedEvent
	err       error
}

func (f *fakeMessaging) PublishChallengeIssued(_ context.Context, msg ChallengeIssuedEvent) error {
	f.published = append(f.published, msg)
	return f.err
}

type fakeThrottler struct {
	result throttle.Result
	err    error
	keys   []string
}

func (f *fakeThrottler) Allow(_ context.Context, key string, _ time.Duration) (throttle.Result, error) {
	f.keys = append(f.keys, key)
	return f.result, f.err
}

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time {
	return f.now
}

type fakeHash struct {
	prefix string
	// verify overrides hash comparison when set.
	verify func(hashed, str string) bool
}

func (f fakeHash) Hash(str string) ([]byte, error) {
	return []byte(f.prefix + str), nil
}

func (f fakeHash) Verify(hashed, str string) bool {
	if f.verify != nil {
		return f.verify(hashed, str)
	}
	return hashed == f.prefix+str
}

type fakeCodeGenerator struct {
	code string
}

func (f fakeCodeGenerator) Generate() (string, error) {
	return f.code, nil
}

type fakeNumberID struct {
	next int64
}

func (f *fakeNumberID) Generate() int64 {
	f.next++
	return f.next
}

type fakeStringID struct {
	value string
}

func (f fakeStringID) Generate() string {
	return f.value
}

// fakeConfig answers only the keys a test sets. Unset keys return zero values
// like the real viper-backed config does.
type fakeConfig struct {
	config.Config
	seconds map[string]int
	minutes map[string]int
	hours   map[string]int
	ints    map[string]int32
	arrays  map[string][]string
}

func (f fakeConfig) GetSecond(key string) time.Duration {
	return time.Duration(f.seconds[key]) * time.Second
}

func (f fakeConfig) GetMinute(key string) time.Duration {
	return time.Duration(f.minutes[key]) * time.Minute
}

func (f fakeConfig) GetHour(key string) time.Duration {
	return time.Duration(f.hours[key]) * time.Hour
}

func (f fakeConfig) GetInt32(key string) int32 {
	return f.ints[key]
}

func (f fakeConfig) GetArray(key string) []string {
	return f.arrays[key]
}

const rbacTestModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

func newTestEnforcer(t *testing.T, policies ...[]string) *casbin.Enforcer {
	t.Helper()

	m, err := model.NewModelFromString(rbacTestModel)
	if err != nil {
		t.Fatalf("failed to build casbin model: %v", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatalf("failed to build casbin enforcer: %v", err)
	}

	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			t.Fatalf("failed to add casbin policy: %v", err)
		}
	}

	return e
}

type usecaseOption func(*Dependency)

func withRepoDB(db *fakeRepoDB) usecaseOption {
	return func(d *Dependency) { d.RepoDB = db }
}

func withMessaging(m *fakeMessaging) usecaseOption {
	return func(d *Dependency) { d.RepoMessaging = m }
}

func withThrottle(th *fakeThrottler) usecaseOption {
	return func(d *Dependency) { d.Throttle = th }
}

func withClock(now time.Time) usecaseOption {
	return func(d *Dependency) { d.Clock = fakeClock{now: now} }
}

func withConfig(cfg fakeConfig) usecaseOption {
	return func(d *Dependency) { d.Config = cfg }
}

func withEnforcer(e *casbin.Enforcer) usecaseOption {
	return func(d *Dependency) { d.Enforcer = e }
}

func newTestUsecase(t *testing.T, opts ...usecaseOption) *Usecase {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	dep := Dependency{
		RepoDB:        &fakeRepoDB{},
		RepoMessaging: &fakeMessaging{},
		Throttle:      &fakeThrottler{result: throttle.Result{Allowed: true}},
		Validator:     v10,
		Config: fakeConfig{
			seconds: map[string]int{
				"modules.access.resend_cooldown_seconds": 60,
				"modules.access.challenge_ttl_seconds":   300,
			},
			minutes: map[string]int{"modules.access.session_ttl_minutes": 30},
			hours:   map[string]int{"modules.access.session_max_hours": 24},
			ints:    map[string]int32{"modules.access.max_attempts": 3},
			arrays:  map[string][]string{"modules.access.grant_duration_days": {"7", "30", "90"}},
		},
		HMAC:       fakeHash{prefix: "hmac:"},
		Argon2ID:   fakeHash{prefix: "argon:"},
		Code:       fakeCodeGenerator{code: "482910"},
		UID:        &fakeNumberID{},
		OID:        fakeStringID{value: "token-opaque"},
		Clock:      fakeClock{now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)},
		Instrument: instrument.NewNoop(),
		Enforcer:   newTestEnforcer(t),
	}

	for _, opt := range opts {
		opt(&dep)
	}

	return New(dep)
}

func authedContext(subject string) context.Context {
	clm := jwt.Claims{}
	clm.Subject = subject
	clm.UserID = 7

	return jwt.SetAuth(context.Background(), clm)
}
