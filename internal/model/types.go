package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

/*
memo. Fund의 식별자는 CNPJ. ID는 라우팅과 FK 용도로만 사용.
지표 필드(Rentability, Risk, Sharpe)는 한 번도 계산되지 않았다면 null.
*/
type Fund struct {
	ID          uint          `json:"id"`
	Cnpj        string        `json:"cnpj" gorm:"size:32;uniqueIndex;not null"`
	Name        string        `json:"name" gorm:"size:255;not null"`
	ClassName   string        `json:"class_name" gorm:"size:120;index"`
	Rentability *float64      `json:"rentability"`
	Risk        *float64      `json:"risk"`
	Sharpe      *float64      `json:"sharpe"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	History     []FundHistory `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// (fund_id, date) 유니크. 동시 수집 시 중복 시드 방지
type FundHistory struct {
	ID     uint           `json:"id"`
	FundID uint           `json:"fund_id" gorm:"not null;uniqueIndex:idx_fund_date"`
	Date   datatypes.Date `json:"date" gorm:"not null;uniqueIndex:idx_fund_date"`
	Nav    float64        `json:"nav"`
}

type Favorite struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_fund"`
	User      User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	FundID    uint      `json:"fund_id" gorm:"not null;uniqueIndex:idx_user_fund"`
	Fund      Fund      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name" gorm:"size:120;not null"`
	Email     string           `json:"email" gorm:"size:200;uniqueIndex;not null"`
	Password  string           `json:"-" gorm:"size:256;not null"`
	CreatedAt time.Time        `json:"created_at"`
	Profile   *InvestorProfile `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

type InvestorProfile struct {
	ID              uint            `json:"id"`
	UserID          uint            `json:"user_id" gorm:"uniqueIndex;not null"`
	RiskProfile     RiskProfile     `json:"risk_profile" gorm:"size:20;default:moderado"`
	AmountAvailable decimal.Decimal `json:"amount_available" gorm:"type:decimal(18,2)"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// 스케줄 작업 활성화 여부
type Event struct {
	ID       uint
	IsActive bool
}

// 외부 피드(CVM) 원본 행. 헤더명 -> 값
type FeedRow map[string]string
