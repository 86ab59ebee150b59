package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive

	"github.com/payflow/balance-svc/internal/config"
	"github.com/payflow/balance-svc/internal/repository/pgrepo"
	"github.com/payflow/balance-svc/internal/repository/repoargs"
	"github.com/payflow/balance-svc/internal/service"
	"github.com/payflow/balance-svc/internal/transport/api"
	"github.com/payflow/balance-svc/internal/transport/events"
	"github.com/payflow/balance-svc/pkg/uow"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting balance service on %s", a.Config.RunAddress)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := a.initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	var publisher *events.Producer
	if a.Config.KafkaBroker != "" {
		publisher = events.New(a.Config.KafkaBroker, a.Logger)
		defer func() {
			if closeErr := publisher.Close(); closeErr != nil {
				a.Logger.WithError(closeErr).Warn("closing kafka producer")
			}
		}()
	}

	services, sErr := service.Factory(unitOfWork, publisher, a.Logger)
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:         a.Logger,
		BalanceService: services.BalanceService,
		JWTSecretKey:   []byte(a.Config.JWTServiceSecret),
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func (a *App) initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)
	lockTimeout := a.Config.LockTimeout

	// balance repo
	balanceRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewBalanceRepository(dbtx, lockTimeout)
	}
	if regErr := unitOfWork.Register(uow.RepositoryName(repoargs.BalanceRepoName), balanceRepoFactoryFn); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	// transaction log repo
	transactionRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewTransactionRepository(dbtx)
	}
	if regErr := unitOfWork.Register(
		uow.RepositoryName(repoargs.TransactionRepoName),
		transactionRepoFactoryFn,
	); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	return unitOfWork, nil
}
