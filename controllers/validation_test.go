package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resellerhub/resellerhub_backend/middleware"
	"github.com/resellerhub/resellerhub_backend/models"
)

type requestValidator struct {
	validator *validator.Validate
}

func (rv *requestValidator) Validate(i interface{}) error {
	return rv.validator.Struct(i)
}

func newJSONContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &requestValidator{validator: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withResellerClaims(c echo.Context) {
	c.Set("user", &jwt.Token{Claims: &middleware.JwtCustomClaims{
		UserID:   primitive.NewObjectID().Hex(),
		UserType: models.UserTypeReseller,
	}})
}

func TestCreateCommissionRejectsInvalidPayload(t *testing.T) {
	// The repository is never reached: bad payloads fail validation first.
	cc := NewCommissionController(nil, nil, nil)

	cases := []struct {
		name string
		body string
	}{
		{"zero amount", `{"amount": 0, "period": "2026-08"}`},
		{"negative amount", `{"amount": -50, "period": "2026-08"}`},
		{"missing period", `{"amount": 120.50}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t, tc.body)
			withResellerClaims(c)
			if err := cc.CreateCommission(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestCreateRuleRejectsInvalidPayload(t *testing.T) {
	rc := NewRuleController(nil)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"priority": 10, "maxAmount": 500}`},
		{"whitespace name", `{"name": "   ", "priority": 10}`},
		{"zero max amount", `{"name": "small amounts", "maxAmount": 0}`},
		{"negative max amount", `{"name": "small amounts", "maxAmount": -10}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t, tc.body)
			if err := rc.CreateRule(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestCreateRuleAcceptsNilMaxAmount(t *testing.T) {
	// A rule without maxAmount is valid input, so the handler proceeds past
	// validation and fails only on the nil repository write.
	c, rec := newJSONContext(t, `{"name": "unlimited", "priority": 1}`)
	defer func() {
		if recover() == nil && rec.Code == http.StatusBadRequest {
			t.Fatalf("rule without maxAmount was rejected as invalid")
		}
	}()
	_ = NewRuleController(nil).CreateRule(c)
}

func TestCreateResellerRejectsInvalidPayload(t *testing.T) {
	rc := NewResellerController(nil, nil)

	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"password": "longenough", "fullName": "Lina Haddad"}`},
		{"malformed email", `{"email": "not-an-email", "password": "longenough", "fullName": "Lina Haddad"}`},
		{"short password", `{"email": "lina@example.com", "password": "short", "fullName": "Lina Haddad"}`},
		{"missing full name", `{"email": "lina@example.com", "password": "longenough"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t, tc.body)
			if err := rc.CreateReseller(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}
}
