package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hmr-builders.backend/pkg/crypto"
)

var (
	ErrOTPNotFound         = errors.New("otp not found or expired")
	ErrOTPMismatch         = errors.New("otp does not match")
	ErrOTPAttemptsExceeded = errors.New("too many otp attempts")
	ErrOTPCooldown         = errors.New("otp recently issued")
)

const otpDigits = 6

var (
	generateOTPCode = func() (string, error) { return crypto.GenerateNumericCode(otpDigits) }
	hashOTPCode     = crypto.HashSecret
	checkOTPCode    = crypto.CheckPassword
)

// OTPStore keeps hashed one-time codes in Redis. Each code is bound to a
// purpose and subject, expires after ttl, tolerates maxAttempts wrong
// guesses and is deleted on first successful use.
type OTPStore struct {
	ttl         time.Duration
	maxAttempts int
	cooldown    time.Duration
}

// NewOTPStore creates a new OTP store
func NewOTPStore(ttl time.Duration, maxAttempts int, cooldown time.Duration) *OTPStore {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &OTPStore{ttl: ttl, maxAttempts: maxAttempts, cooldown: cooldown}
}

// TTL returns how long issued codes stay valid.
func (s *OTPStore) TTL() time.Duration {
	return s.ttl
}

func otpKey(purpose, subject string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, subject)
}

func otpCooldownKey(purpose, subject string) string {
	return fmt.Sprintf("otp:cooldown:%s:%s", purpose, subject)
}

// Issue generates a fresh code for subject, replacing any previous one.
func (s *OTPStore) Issue(ctx context.Context, purpose, subject string) (string, error) {
	if s.cooldown > 0 {
		ok, err := client.SetNX(ctx, otpCooldownKey(purpose, subject), 1, s.cooldown).Result()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrOTPCooldown
		}
	}

	code, err := generateOTPCode()
	if err != nil {
		return "", err
	}
	hash, err := hashOTPCode(code)
	if err != nil {
		return "", err
	}

	key := otpKey(purpose, subject)
	pipe := client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, "hash", hash, "attempts", 0)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return code, nil
}

// claimOTPAttempt counts an attempt against a live code and returns the
// stored hash with the new attempt number, or nil when no code exists.
var claimOTPAttempt = redis.NewScript(`
local hash = redis.call('HGET', KEYS[1], 'hash')
if not hash then
	return false
end
local n = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
return {hash, n}
`)

// Verify consumes the code for subject. Only one caller can succeed for a given code.
// An attempt is counted before the code is compared, so concurrent guesses
// never get more than maxAttempts comparisons between them.
func (s *OTPStore) Verify(ctx context.Context, purpose, subject, code string) error {
	key := otpKey(purpose, subject)
	res, err := claimOTPAttempt.Run(ctx, client, []string{key}).Slice()
	if errors.Is(err, redis.Nil) {
		return ErrOTPNotFound
	}
	if err != nil {
		return err
	}
	if len(res) != 2 {
		return fmt.Errorf("unexpected otp attempt reply: %v", res)
	}
	hash, _ := res[0].(string)
	attempts, _ := res[1].(int64)
	if int(attempts) > s.maxAttempts {
		_ = client.Del(ctx, key).Err()
		return ErrOTPAttemptsExceeded
	}

	if !checkOTPCode(code, hash) {
		if int(attempts) >= s.maxAttempts {
			_ = client.Del(ctx, key).Err()
			return ErrOTPAttemptsExceeded
		}
		return ErrOTPMismatch
	}

	deleted, err := client.Del(ctx, key).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrOTPNotFound
	}
	_ = client.Del(ctx, otpCooldownKey(purpose, subject)).Err()
	return nil
}

// Discard removes any outstanding code for subject.
func (s *OTPStore) Discard(ctx context.Context, purpose, subject string) error {
	return client.Del(ctx, otpKey(purpose, subject), otpCooldownKey(purpose, subject)).Err()
}
