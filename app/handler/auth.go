package handler

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fundmatch/internal/db"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	userIDKey    = "user_id"
	purposeReset = "reset"
)

type AuthConfig struct {
	JwtKey      []byte
	TokenTTL    time.Duration
	ResetTTL    time.Duration
	MaxFailures int64
	Lockout     time.Duration
}

type AuthHandler struct {
	ur    UserRetriever
	uw    UserWriter
	guard LoginGuard
	conf  AuthConfig
	now   func() time.Time
	lg    zerolog.Logger
}

func NewAuthHandler(ur UserRetriever, uw UserWriter, guard LoginGuard, conf AuthConfig) *AuthHandler {
	if conf.TokenTTL <= 0 {
		conf.TokenTTL = 24 * time.Hour
	}
	if conf.ResetTTL <= 0 {
		conf.ResetTTL = 30 * time.Minute
	}
	return &AuthHandler{
		ur:    ur,
		uw:    uw,
		guard: guard,
		conf:  conf,
		now:   time.Now,
		lg:    zerolog.New(os.Stdout).With().Str("Module", "Auth").Timestamp().Logger(),
	}
}

func (h *AuthHandler) InitRoute(app *fiber.App) {

	router := app.Group("/auth")

	router.Post("/register", h.Register)
	router.Post("/login", h.Login)
	router.Post("/reset-password", h.ResetPassword)
	router.Post("/confirm-reset", h.ConfirmReset)
}

// Claims represents the JWT claims
type Claims struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {

	var req RegisterReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("비밀번호 해시 생성 시 오류 발생. %w", err)
	}

	user, err := h.uw.CreateUser(req.Name, req.Email, string(hashed))
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return badRequest("이미 등록된 이메일", nil)
		}
		return fmt.Errorf("CreateUser 시 오류 발생. %w", err)
	}

	h.lg.Info().Uint("user", user.ID).Msg("User registered")
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {

	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()

	// memo. 카운터 저장소 장애 시 로그인 자체는 막지 않음
	failures, err := h.guard.LoginFailures(ctx, req.Email)
	if err != nil {
		h.lg.Error().Err(err).Msg("LoginFailures 조회 실패")
	} else if h.conf.MaxFailures > 0 && failures >= h.conf.MaxFailures {
		return fiber.NewError(fiber.StatusTooManyRequests, "로그인 시도 횟수 초과. 잠시 후 다시 시도")
	}

	user, err := h.ur.UserByEmail(req.Email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("UserByEmail 시 오류 발생. %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		h.registerFailure(c, req.Email)
		return fiber.NewError(fiber.StatusUnauthorized, "이메일 또는 비밀번호 불일치")
	}

	if err := h.guard.ResetLoginFailures(ctx, req.Email); err != nil {
		h.lg.Error().Err(err).Msg("ResetLoginFailures 실패")
	}

	token, exp, err := h.sign(user.ID, user.Email, "", h.conf.TokenTTL)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(JWTResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Expiry:      exp.Unix(),
	})
}

func (h *AuthHandler) registerFailure(c *fiber.Ctx, email string) {
	n, err := h.guard.RegisterLoginFailure(c.UserContext(), email, h.conf.Lockout)
	if err != nil {
		h.lg.Error().Err(err).Msg("RegisterLoginFailure 실패")
		return
	}
	h.lg.Warn().Str("email", email).Int64("failures", n).Msg("Login failed")
}

// 계정 존재 여부와 무관하게 200 응답. 토큰은 계정이 있을 때만 포함
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {

	var req ResetPasswordReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp := ResetPasswordResp{Message: "계정이 존재하면 비밀번호 재설정 안내가 발송됩니다"}

	user, err := h.ur.UserByEmail(req.Email)
	if errors.Is(err, db.ErrNotFound) {
		return c.Status(fiber.StatusOK).JSON(resp)
	}
	if err != nil {
		return fmt.Errorf("UserByEmail 시 오류 발생. %w", err)
	}

	token, _, err := h.sign(user.ID, user.Email, purposeReset, h.conf.ResetTTL)
	if err != nil {
		return err
	}
	resp.ResetToken = token

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) ConfirmReset(c *fiber.Ctx) error {

	var req ConfirmResetReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	claims, err := h.parse(req.Token)
	if err != nil {
		return badRequest("유효하지 않은 토큰", err)
	}
	if claims.Purpose != purposeReset {
		return badRequest("재설정 용도의 토큰이 아님", nil)
	}

	user, err := h.ur.User(claims.UserID)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("비밀번호 해시 생성 시 오류 발생. %w", err)
	}
	if err := h.uw.UpdatePassword(user.ID, string(hashed)); err != nil {
		return fmt.Errorf("UpdatePassword 시 오류 발생. %w", err)
	}
	if err := h.guard.ResetLoginFailures(c.UserContext(), user.Email); err != nil {
		h.lg.Error().Err(err).Msg("ResetLoginFailures 실패")
	}

	h.lg.Info().Uint("user", user.ID).Msg("Password reset")
	return c.Status(fiber.StatusOK).JSON(MessageResp{Message: "비밀번호 변경 완료"})
}

// 접근 토큰만 허용. 재설정 토큰이나 삭제된 사용자의 토큰은 401
func (h *AuthHandler) AuthMiddleware(c *fiber.Ctx) error {

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "authorization header missing")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization format")
	}

	claims, err := h.parse(tokenParts[1])
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}
	if claims.Purpose != "" {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token purpose")
	}

	user, err := h.ur.User(claims.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "user not found")
	}
	if err != nil {
		return fmt.Errorf("User 조회 시 오류 발생. %w", err)
	}

	c.Locals(userIDKey, user.ID)
	return c.Next()
}

func (h *AuthHandler) sign(userID uint, email, purpose string, ttl time.Duration) (string, time.Time, error) {

	now := h.now()
	expirationTime := now.Add(ttl)
	claims := &Claims{
		UserID:  userID,
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.conf.JwtKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("토큰 서명 시 오류 발생. %w", err)
	}
	return tokenString, expirationTime, nil
}

func (h *AuthHandler) parse(tokenString string) (*Claims, error) {

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.conf.JwtKey, nil
	}, jwt.WithTimeFunc(h.now))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(userIDKey).(uint)
	return id
}
