package engine

// generated with gopkg.in/reform.v1

import (
	"fmt"
	"strings"

	"gopkg.in/reform.v1"
	"gopkg.in/reform.v1/parse"
)

type transactionTableType struct {
	s parse.StructInfo
	z []interface{}
}

// Schema returns a schema name in SQL database ("offsync").
func (v *transactionTableType) Schema() string {
	return v.s.SQLSchema
}

// Name returns a view or table name in SQL database ("transactions").
func (v *transactionTableType) Name() string {
	return v.s.SQLName
}

// Columns returns a new slice of column names for that view or table in SQL database.
func (v *transactionTableType) Columns() []string {
	return []string{"tx_id", "reference_id", "type", "status", "amount", "currency", "source_id", "source_address", "source_subaddress", "destination_id", "destination_address", "destination_subaddress", "command_json", "sequence", "blockchain_version", "updated_at", "created_at"}
}

// NewStruct makes a new struct for that view or table.
func (v *transactionTableType) NewStruct() reform.Struct {
	return new(Transaction)
}

// NewRecord makes a new record for that table.
func (v *transactionTableType) NewRecord() reform.Record {
	return new(Transaction)
}

// PKColumnIndex returns an index of primary key column for that table in SQL database.
func (v *transactionTableType) PKColumnIndex() uint {
	return uint(v.s.PKFieldIndex)
}

// TransactionTable represents transactions view or table in SQL database.
var TransactionTable = &transactionTableType{
	s: parse.StructInfo{Type: "Transaction", SQLSchema: "offsync", SQLName: "transactions", Fields: []parse.FieldInfo{{Name: "TransactionID", Type: "int64", Column: "tx_id"}, {Name: "ReferenceID", Type: "", Column: "reference_id"}, {Name: "Type", Type: "", Column: "type"}, {Name: "Status", Type: "", Column: "status"}, {Name: "Amount", Type: "", Column: "amount"}, {Name: "Currency", Type: "", Column: "currency"}, {Name: "SourceID", Type: "", Column: "source_id"}, {Name: "SourceAddress", Type: "", Column: "source_address"}, {Name: "SourceSubaddress", Type: "", Column: "source_subaddress"}, {Name: "DestinationID", Type: "", Column: "destination_id"}, {Name: "DestinationAddress", Type: "", Column: "destination_address"}, {Name: "DestinationSubaddress", Type: "", Column: "destination_subaddress"}, {Name: "CommandJSON", Type: "", Column: "command_json"}, {Name: "Sequence", Type: "", Column: "sequence"}, {Name: "BlockchainVersion", Type: "", Column: "blockchain_version"}, {Name: "UpdatedAt", Type: "", Column: "updated_at"}, {Name: "CreatedAt", Type: "", Column: "created_at"}}, PKFieldIndex: 0},
	z: new(Transaction).Values(),
}

// String returns a string representation of this struct or record.
func (s Transaction) String() string {
	res := make([]string, 17)
	res[0] = "TransactionID: " + reform.Inspect(s.TransactionID, true)
	res[1] = "ReferenceID: " + reform.Inspect(s.ReferenceID, true)
	res[2] = "Type: " + reform.Inspect(s.Type, true)
	res[3] = "Status: " + reform.Inspect(s.Status, true)
	res[4] = "Amount: " + reform.Inspect(s.Amount, true)
	res[5] = "Currency: " + reform.Inspect(s.Currency, true)
	res[6] = "SourceID: " + reform.Inspect(s.SourceID, true)
	res[7] = "SourceAddress: " + reform.Inspect(s.SourceAddress, true)
	res[8] = "SourceSubaddress: " + reform.Inspect(s.SourceSubaddress, true)
	res[9] = "DestinationID: " + reform.Inspect(s.DestinationID, true)
	res[10] = "DestinationAddress: " + reform.Inspect(s.DestinationAddress, true)
	res[11] = "DestinationSubaddress: " + reform.Inspect(s.DestinationSubaddress, true)
	res[12] = "CommandJSON: " + reform.Inspect(s.CommandJSON, true)
	res[13] = "Sequence: " + reform.Inspect(s.Sequence, true)
	res[14] = "BlockchainVersion: " + reform.Inspect(s.BlockchainVersion, true)
	res[15] = "UpdatedAt: " + reform.Inspect(s.UpdatedAt, true)
	res[16] = "CreatedAt: " + reform.Inspect(s.CreatedAt, true)
	return strings.Join(res, ", ")
}

// Values returns a slice of struct or record field values.
// Returned interface{} values are never untyped nils.
func (s *Transaction) Values() []interface{} {
	return []interface{}{
		s.TransactionID,
		s.ReferenceID,
		s.Type,
		s.Status,
		s.Amount,
		s.Currency,
		s.SourceID,
		s.SourceAddress,
		s.SourceSubaddress,
		s.DestinationID,
		s.DestinationAddress,
		s.DestinationSubaddress,
		s.CommandJSON,
		s.Sequence,
		s.BlockchainVersion,
		s.UpdatedAt,
		s.CreatedAt,
	}
}

// Pointers returns a slice of pointers to struct or record fields.
// Returned interface{} values are never untyped nils.
func (s *Transaction) Pointers() []interface{} {
	return []interface{}{
		&s.TransactionID,
		&s.ReferenceID,
		&s.Type,
		&s.Status,
		&s.Amount,
		&s.Currency,
		&s.SourceID,
		&s.SourceAddress,
		&s.SourceSubaddress,
		&s.DestinationID,
		&s.DestinationAddress,
		&s.DestinationSubaddress,
		&s.CommandJSON,
		&s.Sequence,
		&s.BlockchainVersion,
		&s.UpdatedAt,
		&s.CreatedAt,
	}
}

// View returns View object for that struct.
func (s *Transaction) View() reform.View {
	return TransactionTable
}

// Table returns Table object for that record.
func (s *Transaction) Table() reform.Table {
	return TransactionTable
}

// PKValue returns a value of primary key for that record.
// Returned interface{} value is never untyped nil.
func (s *Transaction) PKValue() interface{} {
	return s.TransactionID
}

// PKPointer returns a pointer to primary key field for that record.
// Returned interface{} value is never untyped nil.
func (s *Transaction) PKPointer() interface{} {
	return &s.TransactionID
}

// HasPK returns true if record has non-zero primary key set, false otherwise.
func (s *Transaction) HasPK() bool {
	return s.TransactionID != TransactionTable.z[TransactionTable.s.PKFieldIndex]
}

// SetPK sets record primary key.
func (s *Transaction) SetPK(pk interface{}) {
	if i64, ok := pk.(int64); ok {
		s.TransactionID = int64(i64)
	} else {
		s.TransactionID = pk.(int64)
	}
}

// check interfaces
var (
	_ reform.View   = TransactionTable
	_ reform.Struct = new(Transaction)
	_ reform.Table  = TransactionTable
	_ reform.Record = new(Transaction)
	_ fmt.Stringer  = new(Transaction)
)

type fundsPullPreApprovalTableType struct {
	s parse.StructInfo
	z []interface{}
}

// Schema returns a schema name in SQL database ("offsync").
func (v *fundsPullPreApprovalTableType) Schema() string {
	return v.s.SQLSchema
}

// Name returns a view or table name in SQL database ("preapprovals").
func (v *fundsPullPreApprovalTableType) Name() string {
	return v.s.SQLName
}

// Columns returns a new slice of column names for that view or table in SQL database.
func (v *fundsPullPreApprovalTableType) Columns() []string {
	return []string{"funds_pull_pre_approval_id", "account_id", "address", "biller_address", "type", "expiration_timestamp", "max_cumulative_unit", "max_cumulative_unit_value", "max_cumulative_amount", "max_cumulative_amount_currency", "max_transaction_amount", "max_transaction_amount_currency", "description", "status", "role", "sent", "updated_at", "created_at"}
}

// NewStruct makes a new struct for that view or table.
func (v *fundsPullPreApprovalTableType) NewStruct() reform.Struct {
	return new(FundsPullPreApproval)
}

// NewRecord makes a new record for that table.
func (v *fundsPullPreApprovalTableType) NewRecord() reform.Record {
	return new(FundsPullPreApproval)
}

// PKColumnIndex returns an index of primary key column for that table in SQL database.
func (v *fundsPullPreApprovalTableType) PKColumnIndex() uint {
	return uint(v.s.PKFieldIndex)
}

// FundsPullPreApprovalTable represents preapprovals view or table in SQL database.
var FundsPullPreApprovalTable = &fundsPullPreApprovalTableType{
	s: parse.StructInfo{Type: "FundsPullPreApproval", SQLSchema: "offsync", SQLName: "preapprovals", Fields: []parse.FieldInfo{{Name: "FundsPullPreApprovalID", Type: "string", Column: "funds_pull_pre_approval_id"}, {Name: "AccountID", Type: "", Column: "account_id"}, {Name: "Address", Type: "", Column: "address"}, {Name: "BillerAddress", Type: "", Column: "biller_address"}, {Name: "Type", Type: "", Column: "type"}, {Name: "ExpirationTimestamp", Type: "", Column: "expiration_timestamp"}, {Name: "MaxCumulativeUnit", Type: "", Column: "max_cumulative_unit"}, {Name: "MaxCumulativeUnitValue", Type: "", Column: "max_cumulative_unit_value"}, {Name: "MaxCumulativeAmount", Type: "", Column: "max_cumulative_amount"}, {Name: "MaxCumulativeAmountCurrency", Type: "", Column: "max_cumulative_amount_currency"}, {Name: "MaxTransactionAmount", Type: "", Column: "max_transaction_amount"}, {Name: "MaxTransactionAmountCurrency", Type: "", Column: "max_transaction_amount_currency"}, {Name: "Description", Type: "", Column: "description"}, {Name: "Status", Type: "", Column: "status"}, {Name: "Role", Type: "", Column: "role"}, {Name: "Sent", Type: "", Column: "sent"}, {Name: "UpdatedAt", Type: "", Column: "updated_at"}, {Name: "CreatedAt", Type: "", Column: "created_at"}}, PKFieldIndex: 0},
	z: new(FundsPullPreApproval).Values(),
}

// String returns a string representation of this struct or record.
func (s FundsPullPreApproval) String() string {
	res := make([]string, 18)
	res[0] = "FundsPullPreApprovalID: " + reform.Inspect(s.FundsPullPreApprovalID, true)
	res[1] = "AccountID: " + reform.Inspect(s.AccountID, true)
	res[2] = "Address: " + reform.Inspect(s.Address, true)
	res[3] = "BillerAddress: " + reform.Inspect(s.BillerAddress, true)
	res[4] = "Type: " + reform.Inspect(s.Type, true)
	res[5] = "ExpirationTimestamp: " + reform.Inspect(s.ExpirationTimestamp, true)
	res[6] = "MaxCumulativeUnit: " + reform.Inspect(s.MaxCumulativeUnit, true)
	res[7] = "MaxCumulativeUnitValue: " + reform.Inspect(s.MaxCumulativeUnitValue, true)
	res[8] = "MaxCumulativeAmount: " + reform.Inspect(s.MaxCumulativeAmount, true)
	res[9] = "MaxCumulativeAmountCurrency: " + reform.Inspect(s.MaxCumulativeAmountCurrency, true)
	res[10] = "MaxTransactionAmount: " + reform.Inspect(s.MaxTransactionAmount, true)
	res[11] = "MaxTransactionAmountCurrency: " + reform.Inspect(s.MaxTransactionAmountCurrency, true)
	res[12] = "Description: " + reform.Inspect(s.Description, true)
	res[13] = "Status: " + reform.Inspect(s.Status, true)
	res[14] = "Role: " + reform.Inspect(s.Role, true)
	res[15] = "Sent: " + reform.Inspect(s.Sent, true)
	res[16] = "UpdatedAt: " + reform.Inspect(s.UpdatedAt, true)
	res[17] = "CreatedAt: " + reform.Inspect(s.CreatedAt, true)
	return strings.Join(res, ", ")
}

// Values returns a slice of struct or record field values.
// Returned interface{} values are never untyped nils.
func (s *FundsPullPreApproval) Values() []interface{} {
	return []interface{}{
		s.FundsPullPreApprovalID,
		s.AccountID,
		s.Address,
		s.BillerAddress,
		s.Type,
		s.ExpirationTimestamp,
		s.MaxCumulativeUnit,
		s.MaxCumulativeUnitValue,
		s.MaxCumulativeAmount,
		s.MaxCumulativeAmountCurrency,
		s.MaxTransactionAmount,
		s.MaxTransactionAmountCurrency,
		s.Description,
		s.Status,
		s.Role,
		s.Sent,
		s.UpdatedAt,
		s.CreatedAt,
	}
}

// Pointers returns a slice of pointers to struct or record fields.
// Returned interface{} values are never untyped nils.
func (s *FundsPullPreApproval) Pointers() []interface{} {
	return []interface{}{
		&s.FundsPullPreApprovalID,
		&s.AccountID,
		&s.Address,
		&s.BillerAddress,
		&s.Type,
		&s.ExpirationTimestamp,
		&s.MaxCumulativeUnit,
		&s.MaxCumulativeUnitValue,
		&s.MaxCumulativeAmount,
		&s.MaxCumulativeAmountCurrency,
		&s.MaxTransactionAmount,
		&s.MaxTransactionAmountCurrency,
		&s.Description,
		&s.Status,
		&s.Role,
		&s.Sent,
		&s.UpdatedAt,
		&s.CreatedAt,
	}
}

// View returns View object for that struct.
func (s *FundsPullPreApproval) View() reform.View {
	return FundsPullPreApprovalTable
}

// Table returns Table object for that record.
func (s *FundsPullPreApproval) Table() reform.Table {
	return FundsPullPreApprovalTable
}

// PKValue returns a value of primary key for that record.
// Returned interface{} value is never untyped nil.
func (s *FundsPullPreApproval) PKValue() interface{} {
	return s.FundsPullPreApprovalID
}

// PKPointer returns a pointer to primary key field for that record.
// Returned interface{} value is never untyped nil.
func (s *FundsPullPreApproval) PKPointer() interface{} {
	return &s.FundsPullPreApprovalID
}

// HasPK returns true if record has non-zero primary key set, false otherwise.
func (s *FundsPullPreApproval) HasPK() bool {
	return s.FundsPullPreApprovalID != FundsPullPreApprovalTable.z[FundsPullPreApprovalTable.s.PKFieldIndex]
}

// SetPK sets record primary key.
func (s *FundsPullPreApproval) SetPK(pk interface{}) {
	if str, ok := pk.(string); ok {
		s.FundsPullPreApprovalID = str
	} else {
		s.FundsPullPreApprovalID = pk.(string)
	}
}

// check interfaces
var (
	_ reform.View   = FundsPullPreApprovalTable
	_ reform.Struct = new(FundsPullPreApproval)
	_ reform.Table  = FundsPullPreApprovalTable
	_ reform.Record = new(FundsPullPreApproval)
	_ fmt.Stringer  = new(FundsPullPreApproval)
)
