// Package kyc loads user identity records used to fill travel-rule exchanges.
package kyc

import (
	"database/sql"

	"github.com/pkg/errors"
	"gopkg.in/reform.v1"

	"github.com/gebv/offsync"
)

type Provider struct {
	db *reform.DB
}

var _ offsync.KycProvider = (*Provider)(nil)

func NewProvider(db *reform.DB) *Provider {
	return &Provider{db: db}
}

const selectUserSQL = `SELECT first_name, last_name, dob FROM offsync.users WHERE user_id = $1`

func (p *Provider) GetUserKycInfo(accountID int64) (offsync.KycData, error) {
	kyc := offsync.KycData{Type: "individual"}
	var dob sql.NullString
	err := p.db.QueryRow(selectUserSQL, accountID).Scan(&kyc.GivenName, &kyc.Surname, &dob)
	if err == sql.ErrNoRows {
		return kyc, errors.Wrapf(offsync.ErrNotFound, "user %d", accountID)
	}
	if err != nil {
		return kyc, errors.Wrap(err, "failed select user")
	}
	kyc.Dob = dob.String
	return kyc, nil
}
