package handler

import "github.com/shopspring/decimal"

/***************************************************************** request ****************************************************************/

type RegisterReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// memo. form 요청은 OAuth2 password flow 관례대로 username 필드에 이메일을 받음
type LoginRequest struct {
	Email    string `json:"email" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type ResetPasswordReq struct {
	Email string `json:"email" validate:"required,email"`
}

type ConfirmResetReq struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type UpdateUserReq struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
}

type ProfileReq struct {
	RiskProfile     string          `json:"risk_profile" validate:"omitempty,risk_profile"`
	AmountAvailable decimal.Decimal `json:"amount_available"`
}

type PageQuery struct {
	Skip  int `query:"skip" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=1,lte=1000"`
}

type HistoryQuery struct {
	Limit int `query:"limit" validate:"gte=1,lte=1000"`
}

type EventStatusChangeRequest struct {
	Id     uint `json:"id" validate:"required"`
	Active bool `json:"active"`
}

type EventLaunchRequest struct {
	Id uint `json:"id" validate:"required"`
}

/***************************************************************** resoponse ****************************************************************/

// JWTResponse is the response sent after successful authentication
type JWTResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Expiry      int64  `json:"expiry"`
}

type ResetPasswordResp struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}

type MessageResp struct {
	Message string `json:"message"`
}

type HistoryResp struct {
	Date string  `json:"date"`
	Nav  float64 `json:"nav"`
}

type MetricsResp struct {
	FundID      uint    `json:"fund_id"`
	Rentability float64 `json:"rentability"`
	Risk        float64 `json:"risk"`
	Sharpe      float64 `json:"sharpe"`
	N           int     `json:"n"`
	Sufficient  bool    `json:"sufficient"`
}

type EventResponse struct {
	Id          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}
