package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tradelane/tradegate/internal/gate/domain"
	"github.com/tradelane/tradegate/internal/gate/store"
	"github.com/tradelane/tradegate/pkg/idpsdk"
	"github.com/tradelane/tradegate/pkg/slogx"
)

var (
	// ErrProviderUnavailable means the identity provider could not be reached
	// even after retrying. Maps to 503 at the HTTP layer.
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// ErrBadCredentials is the authoritative wrong-email-or-password verdict.
	ErrBadCredentials = errors.New("invalid credentials")

	// ErrUnverifiedAccount means the credentials were right but the account
	// has not completed email verification with the provider.
	ErrUnverifiedAccount = errors.New("account not verified")

	// ErrSubjectGone means the provider no longer recognises the subject:
	// deleted, suspended, or otherwise revoked since the session was issued.
	ErrSubjectGone = errors.New("subject no longer valid with provider")
)

// IdentityProvider is the slice of the provider SDK this service consumes.
type IdentityProvider interface {
	VerifyCredentials(ctx context.Context, email, password string) (idpsdk.Subject, error)
	GetSubjectByID(ctx context.Context, id string) (idpsdk.Subject, error)
}

// RetryConfig tunes the backoff schedule for provider calls.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialDelay is the wait before the first retry; each subsequent wait
	// doubles until MaxDelay.
	InitialDelay time.Duration

	// MaxDelay caps the doubling.
	MaxDelay time.Duration
}

// DefaultRetryConfig is tuned for a login path: a subject watching a spinner
// will wait a few seconds, not a minute.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     4 * time.Second,
	}
}

// SleepFunc waits for d or until ctx is done. Injected so tests can observe
// the schedule without wall-clock waits.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryState is the backoff cursor between attempts. Pure data; stepping it
// never touches the clock.
type retryState struct {
	attempts int
	delay    time.Duration
}

func (rs retryState) next(cfg RetryConfig) retryState {
	d := rs.delay * 2
	if d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return retryState{attempts: rs.attempts, delay: d}
}

// IdentityService fronts the identity provider with retry-on-network-failure
// semantics and mirrors successful lookups into the local subject store.
//
// Network-class failures (transport errors, timeouts, provider 5xx) are
// retried with exponential backoff. Authoritative verdicts (wrong password,
// revoked token) are returned immediately: retrying cannot change them, and
// doing so would hammer the provider with known-bad credentials.
type IdentityService struct {
	provider IdentityProvider
	subjects store.Subjects
	cfg      RetryConfig
	sleep    SleepFunc
}

// IdentityOption configures an IdentityService.
type IdentityOption func(*IdentityService)

// WithSleep replaces the inter-attempt wait, for tests.
func WithSleep(fn SleepFunc) IdentityOption {
	return func(s *IdentityService) { s.sleep = fn }
}

func NewIdentityService(
	provider IdentityProvider,
	subjects store.Subjects,
	cfg RetryConfig,
	opts ...IdentityOption,
) *IdentityService {
	s := &IdentityService{
		provider: provider,
		subjects: subjects,
		cfg:      cfg,
		sleep:    defaultSleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies credentials with the provider and mirrors the subject
// locally. Unverified accounts are rejected after the password check so the
// error cannot be used to probe which emails exist.
func (s *IdentityService) Login(ctx context.Context, email, password string) (domain.Subject, error) {
	var remote idpsdk.Subject

	err := s.withRetry(ctx, "verify_credentials", func(ctx context.Context) error {
		var err error
		remote, err = s.provider.VerifyCredentials(ctx, email, password)
		return err
	})
	if err != nil {
		var pe *idpsdk.ProviderError
		if errors.As(err, &pe) && pe.Code == idpsdk.ErrorCodeInvalidCredentials {
			return domain.Subject{}, ErrBadCredentials
		}
		return domain.Subject{}, err
	}

	if !remote.EmailVerified {
		return domain.Subject{}, ErrUnverifiedAccount
	}

	subject := domain.Subject{
		ID:         remote.ID,
		Email:      remote.Email,
		Username:   remote.Username,
		Phone:      remote.Phone,
		IsVerified: remote.EmailVerified,
	}
	if err := s.subjects.UpsertSubject(ctx, subject); err != nil {
		return domain.Subject{}, fmt.Errorf("mirror subject: %w", err)
	}

	// Read back so local two-factor state rides along.
	stored, err := s.subjects.GetSubjectByID(ctx, subject.ID)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("load subject: %w", err)
	}
	return stored, nil
}

// Revalidate fetches the provider's current record for the subject. A local
// session alone is not enough for sensitive operations like two-factor
// enrollment; the subject must still be live and verified upstream.
func (s *IdentityService) Revalidate(ctx context.Context, subjectID string) (idpsdk.Subject, error) {
	var remote idpsdk.Subject

	err := s.withRetry(ctx, "get_subject", func(ctx context.Context) error {
		var err error
		remote, err = s.provider.GetSubjectByID(ctx, subjectID)
		return err
	})
	if err != nil {
		if idpsdk.IsAuthoritative(err) {
			return idpsdk.Subject{}, ErrSubjectGone
		}
		return idpsdk.Subject{}, err
	}
	return remote, nil
}

// withRetry runs op until it succeeds, returns an authoritative error, or the
// retry budget is spent. Backoff doubles from InitialDelay up to MaxDelay.
func (s *IdentityService) withRetry(ctx context.Context, opName string, op func(ctx context.Context) error) error {
	log := slogx.FromContext(ctx)
	st := retryState{attempts: 0, delay: s.cfg.InitialDelay}

	for {
		st.attempts++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !idpsdk.IsNetwork(err) {
			return err
		}

		if st.attempts > s.cfg.MaxRetries {
			log.Error("identity provider unreachable",
				"op", opName,
				"attempts", st.attempts,
				"error", err.Error(),
			)
			return fmt.Errorf("%w: %s failed after %d attempts: %v",
				ErrProviderUnavailable, opName, st.attempts, err)
		}

		log.Warn("identity provider call failed, retrying",
			"op", opName,
			"attempt", st.attempts,
			"backoff", st.delay.String(),
		)
		if err := s.sleep(ctx, st.delay); err != nil {
			return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		st = st.next(s.cfg)
	}
}
