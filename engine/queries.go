package engine

import "github.com/pkg/errors"

// GetPaymentCommandJSON returns the stored protocol command of a
// conversation.
func (e *Engine) GetPaymentCommandJSON(referenceID string) (string, error) {
	txn, err := e.repo.GetTransaction(referenceID)
	if err != nil {
		return "", errors.Wrapf(err, "transaction %s", referenceID)
	}
	return txn.CommandJSON, nil
}

// GetAccountPaymentCommands returns the stored commands of every
// conversation an account participates in.
func (e *Engine) GetAccountPaymentCommands(accountID int64) ([]string, error) {
	txns, err := e.repo.TransactionsByAccount(accountID)
	if err != nil {
		return nil, errors.Wrapf(err, "transactions of account %d", accountID)
	}
	commands := make([]string, 0, len(txns))
	for _, txn := range txns {
		if txn.CommandJSON != "" {
			commands = append(commands, txn.CommandJSON)
		}
	}
	return commands, nil
}

// GetFundsPullPreApprovals returns the preapproval records of an account.
func (e *Engine) GetFundsPullPreApprovals(accountID int64) ([]*FundsPullPreApproval, error) {
	return e.repo.PreApprovalsByAccount(accountID)
}
