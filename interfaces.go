package fundmatch

import (
	"context"
	m "fundmatch/internal/model"
	"time"
)

type Storage interface {
	UpsertFund(cnpj, name, className string, rentability, risk, sharpe float64) (*m.Fund, error)
	Fund(id uint) (*m.Fund, error)
	Funds(skip, limit int) ([]m.Fund, error)
	FundsByClass(className string, excludeIDs []uint, limit int) ([]m.Fund, error)
	UpdateFundMetrics(fundID uint, rentability, risk, sharpe float64) error

	AppendHistory(fundID uint, points []m.FundHistory) (int64, error)
	CountHistory(fundID uint) (int64, error)
	ListHistory(fundID uint, limit int) ([]m.FundHistory, error)

	Favorites(userID uint) ([]m.Fund, error)

	RetreiveEventIsActive(eventId uint) bool
	UpdateEventIsActive(eventId uint, isActive bool) error

	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

type Fetcher interface {
	CvmFunds(ctx context.Context, limit int) ([]m.FeedRow, error)
}
