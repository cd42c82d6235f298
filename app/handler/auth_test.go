package handler

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	m "fundmatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler(t *testing.T) {

	env := newTestEnv(t)

	t.Run("회원가입", func(t *testing.T) {
		t.Run("성공 테스트", func(t *testing.T) {
			var user m.User
			code, err := sendRequest(env.app, "/auth/register", "POST", "", RegisterReq{Name: "Ana", Email: "ana@x.com", Password: "secret1"}, &user)
			require.NoError(t, err)
			assert.Equal(t, 201, code)
			assert.Equal(t, "ana@x.com", user.Email)
			assert.Empty(t, user.Password)
		})
		t.Run("중복 이메일", func(t *testing.T) {
			code, err := sendRequest(env.app, "/auth/register", "POST", "", RegisterReq{Name: "Ana2", Email: "ana@x.com", Password: "secret1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 400, code)
		})
		t.Run("짧은 비밀번호", func(t *testing.T) {
			code, err := sendRequest(env.app, "/auth/register", "POST", "", RegisterReq{Name: "Bo", Email: "bo@x.com", Password: "123"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 400, code)
		})
		t.Run("이메일 형식 오류", func(t *testing.T) {
			code, err := sendRequest(env.app, "/auth/register", "POST", "", RegisterReq{Name: "Bo", Email: "bo", Password: "secret1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 400, code)
		})
	})

	t.Run("로그인", func(t *testing.T) {
		t.Run("성공 테스트", func(t *testing.T) {
			var resp JWTResponse
			code, err := sendRequest(env.app, "/auth/login", "POST", "", LoginRequest{Email: "ana@x.com", Password: "secret1"}, &resp)
			require.NoError(t, err)
			assert.Equal(t, 200, code)
			assert.Equal(t, "bearer", resp.TokenType)
			assert.NotEmpty(t, resp.AccessToken)

			code, err = sendRequest(env.app, "/users/me", "GET", resp.AccessToken, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, 200, code)
		})
		t.Run("form 요청", func(t *testing.T) {
			req := httptest.NewRequest("POST", "/auth/login", strings.NewReader("username=ana%40x.com&password=secret1"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			resp, err := env.app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
		t.Run("비밀번호 불일치", func(t *testing.T) {
			code, err := sendRequest(env.app, "/auth/login", "POST", "", LoginRequest{Email: "ana@x.com", Password: "wrong!"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 401, code)
			assert.EqualValues(t, 1, env.guard.failures["ana@x.com"])
		})
		t.Run("미존재 사용자", func(t *testing.T) {
			code, err := sendRequest(env.app, "/auth/login", "POST", "", LoginRequest{Email: "nobody@x.com", Password: "secret1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 401, code)
		})
		t.Run("성공 시 실패 횟수 초기화", func(t *testing.T) {
			code, err := sendRequest(env.app, "/auth/login", "POST", "", LoginRequest{Email: "ana@x.com", Password: "secret1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 200, code)
			assert.Zero(t, env.guard.failures["ana@x.com"])
		})
	})

	t.Run("로그인 잠금", func(t *testing.T) {
		for range 3 {
			code, err := sendRequest(env.app, "/auth/login", "POST", "", LoginRequest{Email: "ana@x.com", Password: "wrong!"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 401, code)
		}

		code, err := sendRequest(env.app, "/auth/login", "POST", "", LoginRequest{Email: "ana@x.com", Password: "secret1"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 429, code)

		// 카운터 만료
		require.NoError(t, env.guard.ResetLoginFailures(t.Context(), "ana@x.com"))
		code, err = sendRequest(env.app, "/auth/login", "POST", "", LoginRequest{Email: "ana@x.com", Password: "secret1"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 200, code)
	})

	t.Run("카운터 저장소 장애", func(t *testing.T) {
		env.guard.err = errors.New("redis down")
		defer func() { env.guard.err = nil }()

		code, err := sendRequest(env.app, "/auth/login", "POST", "", LoginRequest{Email: "ana@x.com", Password: "secret1"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 200, code)
	})

	t.Run("비밀번호 재설정", func(t *testing.T) {

		t.Run("미존재 이메일", func(t *testing.T) {
			var resp ResetPasswordResp
			code, err := sendRequest(env.app, "/auth/reset-password", "POST", "", ResetPasswordReq{Email: "nobody@x.com"}, &resp)
			require.NoError(t, err)
			assert.Equal(t, 200, code)
			assert.Empty(t, resp.ResetToken)
		})

		var resp ResetPasswordResp
		code, err := sendRequest(env.app, "/auth/reset-password", "POST", "", ResetPasswordReq{Email: "ana@x.com"}, &resp)
		require.NoError(t, err)
		require.Equal(t, 200, code)
		require.NotEmpty(t, resp.ResetToken)

		t.Run("재설정 토큰으로 API 접근 불가", func(t *testing.T) {
			code, err := sendRequest(env.app, "/users/me", "GET", resp.ResetToken, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, 401, code)
		})

		t.Run("접근 토큰으로 재설정 불가", func(t *testing.T) {
			user, err := env.users.UserByEmail("ana@x.com")
			require.NoError(t, err)
			access, _, err := env.auth.sign(user.ID, user.Email, "", time.Hour)
			require.NoError(t, err)

			code, err := sendRequest(env.app, "/auth/confirm-reset", "POST", "", ConfirmResetReq{Token: access, NewPassword: "newpass1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 400, code)
		})

		t.Run("잘못된 토큰", func(t *testing.T) {
			code, err := sendRequest(env.app, "/auth/confirm-reset", "POST", "", ConfirmResetReq{Token: "garbage", NewPassword: "newpass1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 400, code)
		})

		t.Run("성공 테스트", func(t *testing.T) {
			code, err := sendRequest(env.app, "/auth/confirm-reset", "POST", "", ConfirmResetReq{Token: resp.ResetToken, NewPassword: "newpass1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 200, code)

			code, err = sendRequest(env.app, "/auth/login", "POST", "", LoginRequest{Email: "ana@x.com", Password: "newpass1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 200, code)

			code, err = sendRequest(env.app, "/auth/login", "POST", "", LoginRequest{Email: "ana@x.com", Password: "secret1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, 401, code)
		})
	})
}

func TestAuthMiddleware(t *testing.T) {

	env := newTestEnv(t)
	user, token := env.signUp(t, "Ana", "ana@x.com", "secret1")

	t.Run("헤더 누락", func(t *testing.T) {
		code, err := sendRequest(env.app, "/favorites", "GET", "", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 401, code)
	})

	t.Run("형식 오류", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/favorites", nil)
		req.Header.Set("Authorization", "Token "+token)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("만료 토큰", func(t *testing.T) {
		expired, _, err := env.auth.sign(user.ID, user.Email, "", -time.Minute)
		require.NoError(t, err)
		code, err := sendRequest(env.app, "/favorites", "GET", expired, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 401, code)
	})

	t.Run("다른 키로 서명", func(t *testing.T) {
		other := NewAuthHandler(env.users, env.users, env.guard, AuthConfig{JwtKey: []byte("other-key")})
		forged, _, err := other.sign(user.ID, user.Email, "", time.Hour)
		require.NoError(t, err)
		code, err := sendRequest(env.app, "/favorites", "GET", forged, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 401, code)
	})

	t.Run("성공 테스트", func(t *testing.T) {
		code, err := sendRequest(env.app, "/favorites", "GET", token, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 200, code)
	})

	t.Run("삭제된 사용자", func(t *testing.T) {
		require.NoError(t, env.users.DeleteUser(user.ID))
		code, err := sendRequest(env.app, "/favorites", "GET", token, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 401, code)
	})
}
