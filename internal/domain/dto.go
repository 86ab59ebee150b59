package domain

type TransactionType string

const (
	TransactionTypeCredit  TransactionType = "CREDIT"
	TransactionTypeDebit   TransactionType = "DEBIT"
	TransactionTypeReserve TransactionType = "RESERVE"
	TransactionTypeRelease TransactionType = "RELEASE"
)

// MutatesReserved сообщает, какое из двух полей счета меняет операция данного типа.
// RESERVE и RELEASE двигают reserved_balance, CREDIT и DEBIT - current_balance.
// В записи лога balance_before/balance_after относятся именно к этому полю.
func (t TransactionType) MutatesReserved() bool {
	return t == TransactionTypeReserve || t == TransactionTypeRelease
}
