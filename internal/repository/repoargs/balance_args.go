package repoargs

import "github.com/shopspring/decimal"

// BalanceUpdate - новый вектор счета, записываемый под удерживаемой блокировкой строки.
type BalanceUpdate struct {
	UserID          string
	CurrentBalance  decimal.Decimal
	ReservedBalance decimal.Decimal
}
