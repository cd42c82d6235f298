package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockPrefix         = "fundmatch:lock:"
	loginFailurePrefix = "fundmatch:login_fail:"
)

// 토큰이 일치할 때만 삭제. 만료 후 다른 인스턴스가 잡은 락을 지우지 않기 위함
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s Storage) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {

	token := uuid.NewString()

	ok, err := s.rds.SetNX(ctx, lockPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		s.lg.Info().Msgf("Lock %s is held by another runner", key)
		return "", false, nil
	}

	s.lg.Info().Msgf("Acquired lock %s", key)
	return token, true, nil
}

func (s Storage) ReleaseLock(ctx context.Context, key, token string) error {

	n, err := releaseScript.Run(ctx, s.rds, []string{lockPrefix + key}, token).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	if n == 0 {
		s.lg.Warn().Msgf("Lock %s was already expired or taken over", key)
		return nil
	}

	s.lg.Info().Msgf("Released lock %s", key)
	return nil
}

/*
memo. 첫 실패 시점부터 window 동안 누적.
INCR와 EXPIRE NX를 한 트랜잭션으로 전송. TTL이 없는 카운터가 남지 않도록 매 실패마다 NX로 만료 지정
*/
func (s Storage) RegisterLoginFailure(ctx context.Context, email string, window time.Duration) (int64, error) {

	key := loginFailurePrefix + email

	var incr *redis.IntCmd
	_, err := s.rds.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}

	n := incr.Val()
	s.lg.Info().Msgf("Login failure %d for %s", n, email)
	return n, nil
}

func (s Storage) LoginFailures(ctx context.Context, email string) (int64, error) {

	n, err := s.rds.Get(ctx, loginFailurePrefix+email).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s Storage) ResetLoginFailures(ctx context.Context, email string) error {
	return s.rds.Del(ctx, loginFailurePrefix+email).Err()
}
