package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/trezcool/amss/apps/api/echo"
	"github.com/trezcool/amss/core/user"
	testutil "github.com/trezcool/amss/tests"
)

func Test_userApi_login(t *testing.T) {
	usr := testutil.CreateUser(t, usrRepo, "John Doe", "johndoe", "johndoe@test.sl", "s3cret", user.RoleTeacher, true)
	testutil.CreateUser(t, usrRepo, "Gone Girl", "gonegirl", "gonegirl@test.sl", "s3cret", user.RoleTeacher, false)

	tests := []httpTest{
		{
			name:     "empty body",
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown user",
			body:     marchallObj(t, LoginRequest{Username: "nobody", Password: "s3cret"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, LoginRequest{Username: usr.Username, Password: "wr0ng"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     marchallObj(t, LoginRequest{Username: "gonegirl", Password: "s3cret"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "login with username",
			body:     marchallObj(t, LoginRequest{Username: usr.Username, Password: "s3cret"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "login with email",
			body:     marchallObj(t, LoginRequest{Username: usr.Email, Password: "s3cret"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != http.StatusOK {
					t.Fatalf("login failed! code = %v; body = %s", rec.Code, rec.Body.String())
				}
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if resp.Token == "" {
					t.Error("login returned an empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_me(t *testing.T) {
	usr := testutil.CreateUser(t, usrRepo, "Me Myself", "memyself", "me@test.sl", "s3cret", user.RoleStudent, true)

	t.Run("no token", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, usr))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("me failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var got user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if got.ID != usr.ID || got.Username != usr.Username {
			t.Errorf("me returned %+v; want %+v", got, usr)
		}
	})
}

func Test_userApi_roles(t *testing.T) {
	principal := testutil.CreateUser(t, usrRepo, "The Boss", "thebigboss", "boss@test.sl", "s3cret", user.RolePrincipal, true)
	tch := testutil.CreateUser(t, usrRepo, "Some Teacher", "someteacher", "teach@test.sl", "s3cret", user.RoleTeacher, true)

	tests := []httpTest{
		{
			name:     "requires authentication",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "forbidden for teachers",
			token:    getToken(t, tch),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "ok for the principal",
			token:    getToken(t, principal),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, user.AllRoles),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users/roles", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
