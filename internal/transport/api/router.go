package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/payflow/balance-svc/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup        = "/api/v1/balance"
	HealthRoute       = "/health"
	BalanceRoute      = "/:userId"
	CreditRoute       = "/:userId/credit"
	DebitRoute        = "/:userId/debit"
	ReserveRoute      = "/:userId/reserve"
	ReleaseRoute      = "/:userId/release"
	TransactionsRoute = "/:userId/transactions"
)

type RouterArgs struct {
	Logger         *logrus.Logger
	BalanceService BalanceServicer
	JWTSecretKey   []byte
}

func New(args RouterArgs) *gin.Engine {
	if err := registerValidators(); err != nil {
		panic(err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	balanceHandler := NewBalanceHandler(args.BalanceService)

	api := r.Group(RouteGroup)
	api.GET(HealthRoute, balanceHandler.Health)

	// ниже все роуты группы требуют сервисный токен.
	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	api.GET(BalanceRoute, balanceHandler.Index)
	api.POST(CreditRoute, balanceHandler.Credit)
	api.POST(DebitRoute, balanceHandler.Debit)
	api.POST(ReserveRoute, balanceHandler.Reserve)
	api.POST(ReleaseRoute, balanceHandler.Release)
	api.GET(TransactionsRoute, balanceHandler.Transactions)
	return r
}
