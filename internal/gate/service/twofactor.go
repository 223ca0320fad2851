package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/tradelane/tradegate/internal/gate/domain"
	"github.com/tradelane/tradegate/internal/gate/store"
	"github.com/tradelane/tradegate/pkg/cryptox"
	"github.com/tradelane/tradegate/pkg/slogx"
)

var (
	ErrInvalidPasscode = errors.New("invalid passcode")
	ErrNoPendingSecret = errors.New("no enrollment in progress")
	ErrMalformedOTP    = errors.New("otp must be a 6 digit code")
	ErrSubjectNotKnown = errors.New("subject not known locally")
)

// otpPattern is the syntactic shape of a TOTP passcode. Checked before any
// secret is decrypted; garbage input never reaches the crypto path.
var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

// totpSkew is the accepted window drift in 30-second steps on either side of
// now, tolerating slow typists and modest clock skew between the subject's
// phone and this server.
const totpSkew = 2

// TwoFactorService runs TOTP enrollment. Secrets are encrypted before they
// touch the database and the plaintext is shown to the subject exactly once,
// at enrollment time.
type TwoFactorService struct {
	store  store.Store
	box    *cryptox.SecretBox
	issuer string
}

func NewTwoFactorService(st store.Store, box *cryptox.SecretBox, issuer string) *TwoFactorService {
	return &TwoFactorService{store: st, box: box, issuer: issuer}
}

// BeginEnrollment generates a fresh TOTP secret for the subject, stores it
// encrypted and pending, and returns the otpauth URI and secret for the
// dashboard to render. Starting over replaces any prior secret, pending or
// enabled, so a lost authenticator can always be re-enrolled.
func (s *TwoFactorService) BeginEnrollment(ctx context.Context, subjectID, accountName string) (domain.TwoFactorEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountName,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TwoFactorEnrollment{}, fmt.Errorf("generate totp key: %w", err)
	}

	sealed, err := s.box.Seal(key.Secret())
	if err != nil {
		return domain.TwoFactorEnrollment{}, fmt.Errorf("seal totp secret: %w", err)
	}

	err = s.store.Subjects().SetPendingTwoFactorSecret(ctx, subjectID, sealed, time.Now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return domain.TwoFactorEnrollment{}, ErrSubjectNotKnown
	}
	if err != nil {
		return domain.TwoFactorEnrollment{}, fmt.Errorf("store totp secret: %w", err)
	}

	slogx.FromContext(ctx).Info("two-factor enrollment started", "subject_id", subjectID)

	return domain.TwoFactorEnrollment{
		QR:     key.URL(),
		Secret: key.Secret(),
	}, nil
}

// ConfirmEnrollment checks a passcode against the pending secret and, on
// match, flips the enrollment to enabled. The passcode's shape is checked
// before anything is loaded or decrypted.
func (s *TwoFactorService) ConfirmEnrollment(ctx context.Context, subjectID, passcode string) error {
	if !otpPattern.MatchString(passcode) {
		return ErrMalformedOTP
	}

	subject, err := s.store.Subjects().GetSubjectByID(ctx, subjectID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrSubjectNotKnown
	}
	if err != nil {
		return fmt.Errorf("load subject: %w", err)
	}
	if subject.TwoFactorSecret == nil {
		return ErrNoPendingSecret
	}

	secret, err := s.box.Open(*subject.TwoFactorSecret)
	if err != nil {
		return fmt.Errorf("unseal totp secret: %w", err)
	}

	ok, err := totp.ValidateCustom(passcode, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return fmt.Errorf("validate passcode: %w", err)
	}
	if !ok {
		slogx.FromContext(ctx).Warn("two-factor passcode rejected", "subject_id", subjectID)
		return ErrInvalidPasscode
	}

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Subjects().EnableTwoFactor(ctx, subjectID, time.Now().UTC())
	})
	if err != nil {
		return fmt.Errorf("enable two-factor: %w", err)
	}

	slogx.FromContext(ctx).Info("two-factor enrollment confirmed", "subject_id", subjectID)
	return nil
}
