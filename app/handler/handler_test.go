package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"fundmatch/app/middleware"
	m "fundmatch/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	app   *fiber.App
	auth  *AuthHandler
	users *UserStoreMock
	guard *LoginGuardMock
	funds *FundRetrieverMock
	favs  *FavoriteRepositoryMock
	svc   *ServiceMock
}

func sampleFunds() []m.Fund {
	r1, r2 := 0.12, -0.03
	return []m.Fund{
		{ID: 1, Cnpj: "00.000.000/0001-01", Name: "Alpha FI", ClassName: "Renda Fixa", Rentability: &r1},
		{ID: 2, Cnpj: "00.000.000/0001-02", Name: "Beta FIA", ClassName: "Ações", Rentability: &r2},
		{ID: 3, Cnpj: "00.000.000/0001-03", Name: "Gama FIM", ClassName: "Multimercado"},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	funds := sampleFunds()
	env := &testEnv{
		users: NewUserStoreMock(),
		guard: NewLoginGuardMock(),
		funds: &FundRetrieverMock{funds: funds, hist: map[uint][]m.FundHistory{}},
		favs:  NewFavoriteRepositoryMock(funds...),
		svc:   &ServiceMock{},
	}

	env.app = fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	middleware.SetupMiddleware(env.app, "*")

	env.auth = NewAuthHandler(env.users, env.users, env.guard, AuthConfig{
		JwtKey:      []byte("test-key"),
		TokenTTL:    time.Hour,
		ResetTTL:    30 * time.Minute,
		MaxFailures: 3,
		Lockout:     time.Minute,
	})
	env.auth.InitRoute(env.app)

	protected := env.auth.AuthMiddleware
	NewUserHandler(env.users, env.users, env.users).InitRoute(env.app, protected)
	NewFundHandler(env.funds, env.svc, 0).InitRoute(env.app)
	NewFavoriteHandler(env.favs, env.svc).InitRoute(env.app, protected)
	NewReportHandler(env.users, env.favs, env.svc, env.funds).InitRoute(env.app, protected)
	NewCategoryHandler(env.funds).InitRoute(env.app)
	NewEventHandler(env.svc, env.svc, env.svc).InitRoute(env.app, protected)

	return env
}

// 사용자 생성 후 접근 토큰 반환
func (env *testEnv) signUp(t *testing.T, name, email, password string) (*m.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := env.users.CreateUser(name, email, string(hashed))
	require.NoError(t, err)

	token, _, err := env.auth.sign(user.ID, user.Email, "", time.Hour)
	require.NoError(t, err)
	return user, token
}

func sendRequest(app *fiber.App, url, method, token string, reqBody any, respBody any) (int, error) {

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if respBody != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, respBody); err != nil {
			return resp.StatusCode, fmt.Errorf("응답 파싱 실패. body: %s. %w", raw, err)
		}
	}
	return resp.StatusCode, nil
}
