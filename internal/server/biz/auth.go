package biz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/lists"
	"github.com/looplj/adminhub/internal/log"
	"github.com/looplj/adminhub/internal/pkg/pubsub"
	"github.com/looplj/adminhub/internal/pkg/xcache"
	"github.com/looplj/adminhub/internal/pkg/xmap"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/session"
	"github.com/looplj/adminhub/internal/storage"
)

// AuthConfig configures session token verification. Tokens are issued by an
// external party sharing the secret; MintToken covers tests and tooling.
type AuthConfig struct {
	// Secret signs and verifies the HS256 session tokens.
	Secret string `conf:"secret" yaml:"secret" json:"secret"`
	// TokenTTL bounds the lifetime of tokens minted by MintToken.
	TokenTTL time.Duration `conf:"token_ttl" yaml:"token_ttl" json:"token_ttl"`
}

// DefaultAuthConfig returns the default auth config.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		TokenTTL: 7 * 24 * time.Hour,
	}
}

type AuthServiceParams struct {
	fx.In

	Config      AuthConfig
	CacheConfig xcache.Config
	Store       *storage.Store
	Registry    *schema.Registry
	Evaluator   *access.Evaluator
}

// userInvalidationChannel carries invalidated user ids between instances
// when the cache runs on redis.
const userInvalidationChannel = "adminhub:auth:user-invalidations"

func newUserInvalidations(cfg xcache.Config) (pubsub.Bus[string], error) {
	mode := pubsub.ModeMemory
	if cfg.Mode == xcache.ModeRedis || cfg.Mode == xcache.ModeTwoLevel {
		mode = pubsub.ModeRedis
	}

	return pubsub.New[string](
		pubsub.Config{Mode: mode, Redis: cfg.Redis},
		pubsub.Options{Channel: userInvalidationChannel},
	)
}

func NewAuthService(params AuthServiceParams) (*AuthService, error) {
	invalidations, err := newUserInvalidations(params.CacheConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build user invalidation bus: %w", err)
	}

	svc := &AuthService{
		AbstractService: &AbstractService{
			store:     params.Store,
			registry:  params.Registry,
			evaluator: params.Evaluator,
		},
		config:        params.Config,
		UserCache:     xcache.NewFromConfig[storage.Item](params.CacheConfig),
		invalidations: invalidations,
	}

	events, stop := invalidations.Subscribe()
	svc.unsubscribe = stop

	go func() {
		for id := range events {
			_ = svc.UserCache.Delete(context.Background(), buildUserCacheKey(id))
		}
	}()

	return svc, nil
}

// AuthService turns bearer tokens into sessions.
type AuthService struct {
	*AbstractService

	config AuthConfig

	// UserCache holds resolved user items, never access decisions.
	UserCache xcache.Cache[storage.Item]

	// invalidations fans user cache drops out to every instance.
	invalidations pubsub.Bus[string]
	unsubscribe   func()
}

// Close unsubscribes from the invalidation stream.
func (s *AuthService) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return hex.EncodeToString(hashedPassword), nil
}

// VerifyPassword verifies a password against a hash.
func VerifyPassword(hashedPassword, password string) error {
	decodedHashedPassword, err := hex.DecodeString(hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to decode hashed password: %w", err)
	}

	return bcrypt.CompareHashAndPassword(decodedHashedPassword, []byte(password))
}

// GenerateSecretKey generates a random secret for signing session tokens.
func GenerateSecretKey() (string, error) {
	bytes := make([]byte, 32) // 256 bits

	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}

// MintToken issues a signed token naming the given user item.
func (s *AuthService) MintToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.config.TokenTTL).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// AuthenticateToken validates a bearer token and builds the session of the
// user item it names. Missing or disabled users fail verification, the
// caller stays anonymous.
func (s *AuthService) AuthenticateToken(ctx context.Context, tokenString string) (session.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method: %v", ErrInvalidJWT, token.Header["alg"])
		}

		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return session.Session{}, fmt.Errorf("%w: failed to parse jwt token: %w", ErrInvalidJWT, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return session.Session{}, fmt.Errorf("%w: invalid token", ErrInvalidJWT)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return session.Session{}, fmt.Errorf("%w: invalid token claims", ErrInvalidJWT)
	}

	user, err := s.lookupUser(ctx, userID)
	if err != nil {
		return session.Session{}, fmt.Errorf("%w: failed to get user: %w", ErrInvalidJWT, err)
	}

	if enabled, _ := xmap.GetBool(user.Data, "isEnabled"); !enabled {
		return session.Session{}, fmt.Errorf("%w: user disabled", ErrInvalidJWT)
	}

	isAdmin, _ := xmap.GetBool(user.Data, "isAdmin")

	return session.New(user.ID, isAdmin, true), nil
}

func buildUserCacheKey(id string) string {
	return "user:" + id
}

// lookupUser resolves a user item, serving repeat lookups from the cache.
func (s *AuthService) lookupUser(ctx context.Context, id string) (storage.Item, error) {
	cacheKey := buildUserCacheKey(id)

	user, err := s.UserCache.Get(ctx, cacheKey)
	if err != nil || user.ID != id {
		user, err = s.store.Get(ctx, lists.UserListKey, id)
		if err != nil {
			return storage.Item{}, err
		}

		if err := s.UserCache.Set(ctx, cacheKey, user); err != nil {
			log.Error(ctx, "failed to cache user", log.Cause(err))
		}
	}

	return user, nil
}

// InvalidateUser drops a user item from the resolution cache. The item
// service calls it after writes to the users list so flag changes do not
// wait out the cache TTL. The drop is also broadcast so sibling instances
// holding the user in a memory cache let go of it too.
func (s *AuthService) InvalidateUser(ctx context.Context, id string) {
	_ = s.UserCache.Delete(ctx, buildUserCacheKey(id))

	err := s.invalidations.Publish(ctx, id)
	if err != nil {
		log.Warn(ctx, "failed to broadcast user invalidation",
			log.String("user_id", id),
			log.Cause(err),
		)
	}
}
