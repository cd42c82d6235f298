package handler

import (
	"context"
	"time"

	"fundmatch"
	"fundmatch/internal/metrics"
	m "fundmatch/internal/model"

	"github.com/shopspring/decimal"
)

type UserRetriever interface {
	User(id uint) (*m.User, error)
	UserByEmail(email string) (*m.User, error)
	Users(skip, limit int) ([]m.User, error)
}

type UserWriter interface {
	CreateUser(name, email, hashedPassword string) (*m.User, error)
	UpdateUser(id uint, name, email string) (*m.User, error)
	UpdatePassword(id uint, hashedPassword string) error
	DeleteUser(id uint) error
}

type ProfileRepository interface {
	Profile(userID uint) (*m.InvestorProfile, error)
	SaveProfile(userID uint, risk m.RiskProfile, amount decimal.Decimal) (*m.InvestorProfile, error)
}

// 로그인 실패 횟수 카운터. window 동안 유지
type LoginGuard interface {
	RegisterLoginFailure(ctx context.Context, email string, window time.Duration) (int64, error)
	LoginFailures(ctx context.Context, email string) (int64, error)
	ResetLoginFailures(ctx context.Context, email string) error
}

type FundRetriever interface {
	Fund(id uint) (*m.Fund, error)
	FundByCnpj(cnpj string) (*m.Fund, error)
	Funds(skip, limit int) ([]m.Fund, error)
	ListHistory(fundID uint, limit int) ([]m.FundHistory, error)
}

type ClassRetriever interface {
	FundClasses() ([]string, error)
}

type MetricsComputer interface {
	ComputeAndStoreMetrics(fundID uint, riskFree float64) (*metrics.Result, error)
}

type FavoriteRepository interface {
	AddFavorite(userID, fundID uint) (*m.Favorite, error)
	RemoveFavorite(userID, fundID uint) error
	Favorites(userID uint) ([]m.Fund, error)
}

type Recommender interface {
	Recommendations(userID uint) ([]m.Fund, error)
}

type EventRetriever interface {
	Events() []*fundmatch.EnrolledEvent
}

type EventLauncher interface {
	LaunchEvent(id uint) error
}

type EventStatusChanger interface {
	SetEventStatus(id uint, active bool) error
}
