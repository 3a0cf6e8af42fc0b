package engine

// COMPLETED_TX and CANCELED_TX are terminal.
var transactionStatusTransitionChart = TransactionStatusTransitionChart{
	OUTBOUND_TX: {WAIT_TX, INBOUND_TX, READY_TX, CANCELED_TX},
	INBOUND_TX:  {OUTBOUND_TX, READY_TX, CANCELED_TX},
	WAIT_TX:     {INBOUND_TX, READY_TX, CANCELED_TX},
	READY_TX:    {COMPLETED_TX, CANCELED_TX},
}

type TransactionStatusTransitionChart map[TransactionStatus][]TransactionStatus

func (s TransactionStatusTransitionChart) Allowed(from, to TransactionStatus) bool {
	list, exists := s[from]
	if !exists {
		return false
	}
	for _, status := range list {
		if status.Match(to) {
			return true
		}
	}
	return false
}
