package service

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type AppServices struct {
	BalanceService *BalanceService
}

func Factory(unitOfWork UOW, publisher EventPublisher, l logrus.FieldLogger) (*AppServices, error) {
	balanceService, balanceServiceErr := NewBalanceService(unitOfWork, publisher, l)
	if balanceServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", balanceServiceErr.Error())
	}

	return &AppServices{
		BalanceService: balanceService,
	}, nil
}
