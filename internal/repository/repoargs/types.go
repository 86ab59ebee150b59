package repoargs

type RepositoryName string

const (
	BalanceRepoName     RepositoryName = "balance"
	TransactionRepoName RepositoryName = "balance_transaction"
)
