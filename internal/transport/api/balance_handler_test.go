package api_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/payflow/balance-svc/internal/domain"
	"github.com/payflow/balance-svc/internal/service"
	"github.com/payflow/balance-svc/internal/transport/api"
	"github.com/payflow/balance-svc/internal/transport/api/mocks"
	"github.com/payflow/balance-svc/internal/transport/api/testutils"
	"github.com/payflow/balance-svc/internal/transport/api/tokens"
)

var testJWTKey = []byte("test-secret")

type BalanceHandlerTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockBalanceServicer
	router  *gin.Engine
	token   string
}

func TestBalanceHandlerSuite(t *testing.T) {
	suite.Run(t, new(BalanceHandlerTestSuite))
}

func (s *BalanceHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *BalanceHandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockBalanceServicer(s.ctrl)
	s.router = api.New(api.RouterArgs{
		BalanceService: s.service,
		JWTSecretKey:   testJWTKey,
	})

	token, err := tokens.GenerateServiceJWT("order-service", time.Minute, testJWTKey)
	s.Require().NoError(err)
	s.token = token
}

func (s *BalanceHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *BalanceHandlerTestSuite) url(path string) string {
	return api.RouteGroup + path
}

func snapshotFor(userID string, current, reserved int64) *domain.BalanceSnapshot {
	cur := decimal.NewFromInt(current)
	res := decimal.NewFromInt(reserved)
	return &domain.BalanceSnapshot{
		UserID:           userID,
		CurrentBalance:   cur,
		AvailableBalance: cur.Sub(res),
		ReservedBalance:  res,
		Currency:         domain.DefaultCurrency,
	}
}

func decodeBalance(s *BalanceHandlerTestSuite, body io.Reader) api.BalanceResponse {
	var response api.BalanceResponse
	s.Require().NoError(json.NewDecoder(body).Decode(&response))
	return response
}

func (s *BalanceHandlerTestSuite) TestGetBalance() {
	userID := gofakeit.UUID()
	s.service.EXPECT().
		GetBalance(gomock.Any(), userID).
		Return(snapshotFor(userID, 500, 100), nil)

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    s.url("/" + userID),
	}, testutils.WithBearerToken(s.token))
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)
	response := decodeBalance(s, resp.Body)
	s.Equal(userID, response.UserID)
	s.True(decimal.NewFromInt(500).Equal(response.CurrentBalance))
	s.True(decimal.NewFromInt(400).Equal(response.AvailableBalance))
	s.True(decimal.NewFromInt(100).Equal(response.ReservedBalance))
	s.Equal(domain.DefaultCurrency, response.Currency)
}

func (s *BalanceHandlerTestSuite) TestCredit() {
	userID := gofakeit.UUID()
	transactionID := uuid.New()

	s.service.EXPECT().
		Credit(gomock.Any(), userID, service.OperationArgs{
			Amount:        decimal.RequireFromString("150.25"),
			TransactionID: &transactionID,
		}).
		Return(snapshotFor(userID, 150, 0), nil)

	body := fmt.Sprintf(`{"amount": "150.25", "transactionId": %q}`, transactionID)
	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    s.url("/" + userID + "/credit"),
		Body:   strings.NewReader(body),
	}, testutils.WithBearerToken(s.token))
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)
	response := decodeBalance(s, resp.Body)
	s.Equal(userID, response.UserID)
	s.True(decimal.NewFromInt(150).Equal(response.CurrentBalance))
}

func (s *BalanceHandlerTestSuite) TestOperationStatusMapping() {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", domain.ErrBalanceNotFound, http.StatusNotFound},
		{"insufficient balance", domain.ErrInsufficientBalance, http.StatusPaymentRequired},
		{"insufficient available", domain.ErrInsufficientAvailableBalance, http.StatusPaymentRequired},
		{"insufficient reserved", domain.ErrInsufficientReservedBalance, http.StatusPaymentRequired},
		{"lock timeout", domain.ErrLockTimeout, http.StatusConflict},
		{"invariant violation", domain.NewInvariantViolationError(
			"u", decimal.NewFromInt(1), decimal.NewFromInt(2),
		), http.StatusInternalServerError},
		{"unknown", domain.ErrUnknown, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			userID := gofakeit.UUID()
			s.service.EXPECT().
				Debit(gomock.Any(), userID, gomock.Any()).
				Return(nil, tc.err)

			resp := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    s.url("/" + userID + "/debit"),
				Body:   strings.NewReader(`{"amount": "10"}`),
			}, testutils.WithBearerToken(s.token))
			defer resp.Body.Close()

			s.Equal(tc.wantStatus, resp.StatusCode)
		})
	}
}

// Невалидная сумма отклоняется биндингом, до сервиса запрос не доходит.
func (s *BalanceHandlerTestSuite) TestOperationRejectsBadAmount() {
	testCases := []struct {
		name string
		body string
	}{
		{"zero", `{"amount": "0"}`},
		{"negative", `{"amount": "-5"}`},
		{"missing", `{}`},
		{"not a number", `{"amount": "abc"}`},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    s.url("/" + gofakeit.UUID() + "/reserve"),
				Body:   strings.NewReader(tc.body),
			}, testutils.WithBearerToken(s.token))
			defer resp.Body.Close()

			s.Equal(http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func (s *BalanceHandlerTestSuite) TestReserveAndRelease() {
	userID := gofakeit.UUID()
	amount := decimal.NewFromInt(200)

	s.service.EXPECT().
		Reserve(gomock.Any(), userID, service.OperationArgs{Amount: amount}).
		Return(snapshotFor(userID, 500, 200), nil)
	s.service.EXPECT().
		Release(gomock.Any(), userID, service.OperationArgs{Amount: amount}).
		Return(snapshotFor(userID, 500, 0), nil)

	reserveResp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    s.url("/" + userID + "/reserve"),
		Body:   strings.NewReader(`{"amount": "200"}`),
	}, testutils.WithBearerToken(s.token))
	defer reserveResp.Body.Close()

	s.Require().Equal(http.StatusOK, reserveResp.StatusCode)
	reserved := decodeBalance(s, reserveResp.Body)
	s.True(decimal.NewFromInt(200).Equal(reserved.ReservedBalance))
	s.True(decimal.NewFromInt(300).Equal(reserved.AvailableBalance))

	releaseResp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    s.url("/" + userID + "/release"),
		Body:   strings.NewReader(`{"amount": "200"}`),
	}, testutils.WithBearerToken(s.token))
	defer releaseResp.Body.Close()

	s.Require().Equal(http.StatusOK, releaseResp.StatusCode)
	released := decodeBalance(s, releaseResp.Body)
	s.True(released.ReservedBalance.IsZero())
}

func (s *BalanceHandlerTestSuite) TestTransactions() {
	userID := gofakeit.UUID()
	now := time.Now()

	s.service.EXPECT().
		Transactions(gomock.Any(), userID, uint(2), uint(5)).
		Return([]domain.BalanceTransaction{
			{
				ID:            uuid.New(),
				CreatedAt:     now,
				UserID:        userID,
				Type:          domain.TransactionTypeCredit,
				Amount:        decimal.NewFromInt(100),
				BalanceBefore: decimal.Zero,
				BalanceAfter:  decimal.NewFromInt(100),
			},
		}, nil)

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    s.url("/" + userID + "/transactions?page=2&pageSize=5"),
	}, testutils.WithBearerToken(s.token))
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var items []api.TransactionsResponseItem
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&items))
	s.Require().Len(items, 1)
	s.Equal(string(domain.TransactionTypeCredit), items[0].Type)
	s.True(decimal.NewFromInt(100).Equal(items[0].Amount))
	s.Equal(now.Format(time.RFC3339), items[0].CreatedAt)
}

func (s *BalanceHandlerTestSuite) TestAuthRequired() {
	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    s.url("/" + gofakeit.UUID()),
	})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *BalanceHandlerTestSuite) TestAuthRejectsForeignKey() {
	token, err := tokens.GenerateServiceJWT("order-service", time.Minute, []byte("another-key"))
	s.Require().NoError(err)

	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    s.url("/" + gofakeit.UUID()),
	}, testutils.WithBearerToken(token))
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *BalanceHandlerTestSuite) TestHealthWithoutToken() {
	resp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    s.url("/health"),
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}
