// Package offchain exposes the off-chain protocol endpoint and the REST API
// over HTTP.
package offchain

import (
	"encoding/hex"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo"
	echo_middleware "github.com/labstack/echo/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gebv/offsync"
	"github.com/gebv/offsync/engine"
	"github.com/gebv/offsync/protocol"
)

// RequestSenderAddressHeader carries the counterpart VASP address of an
// inbound protocol request.
const RequestSenderAddressHeader = "X-Request-Sender-Address"

type Server struct {
	e *engine.Engine
	l *zap.Logger
}

func NewServer(e *engine.Engine) *Server {
	return &Server{
		e: e,
		l: zap.L().Named("offchain_server"),
	}
}

// Setup registers the routes and the middleware on the echo instance.
func (s *Server) Setup(e *echo.Echo) {
	e.Use(echo_middleware.Recover())
	e.Use(echo_middleware.Logger())
	e.Use(echo_middleware.BodyLimit("64K"))

	e.POST("/v2/command", s.CommandHandler())

	e.POST("/offchain/query/payments/:account_id", s.InitiatePaymentHandler())
	e.GET("/offchain/payments/:account_id", s.ListPaymentsHandler())
	e.GET("/offchain/payment/:reference_id", s.GetPaymentHandler())
	e.POST("/offchain/preapprovals", s.EstablishPreApprovalHandler())
	e.PUT("/offchain/preapprovals/:id", s.ApprovePreApprovalHandler())
	e.GET("/offchain/preapprovals/:account_id", s.ListPreApprovalsHandler())
}

// CommandHandler обработчик входящих команд от противоположного VASP.
func (s *Server) CommandHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		senderAddress := c.Request().Header.Get(RequestSenderAddressHeader)
		if senderAddress == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing " + RequestSenderAddressHeader + " header"})
		}
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			s.l.Warn("Failed read inbound command body.", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed read body"})
		}
		code, reply := s.e.ProcessInboundRequest(senderAddress, body)
		return c.Blob(code, "application/jws+json", reply)
	}
}

type initiatePaymentRequest struct {
	DestinationAddress    string `json:"destination_address"`
	DestinationSubaddress string `json:"destination_subaddress"`
	Amount                int64  `json:"amount"`
	Currency              string `json:"currency"`
}

// InitiatePaymentHandler создает исходящую оффчейн транзакцию.
func (s *Server) InitiatePaymentHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		accountID, err := strconv.ParseInt(c.Param("account_id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account_id"})
		}
		var req initiatePaymentRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}
		destAddr, err := hex.DecodeString(req.DestinationAddress)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid destination_address"})
		}
		destSub, err := hex.DecodeString(req.DestinationSubaddress)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid destination_subaddress"})
		}
		if req.Amount <= 0 || req.Currency == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount and currency are required"})
		}

		txn, err := s.e.SaveOutboundTransaction(accountID, destAddr, destSub, req.Amount, req.Currency)
		if err != nil {
			if errors.Is(err, offsync.ErrAlreadyExists) {
				return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
			}
			s.l.Warn("Failed save outbound transaction.", zap.Int64("account_id", accountID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"reference_id": txn.ReferenceID,
			"status":       txn.Status,
		})
	}
}

// ListPaymentsHandler возвращает команды всех диалогов аккаунта.
func (s *Server) ListPaymentsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		accountID, err := strconv.ParseInt(c.Param("account_id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account_id"})
		}
		commands, err := s.e.GetAccountPaymentCommands(accountID)
		if err != nil {
			s.l.Warn("Failed list payment commands.", zap.Int64("account_id", accountID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"commands": commands})
	}
}

func (s *Server) GetPaymentHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		referenceID := c.Param("reference_id")
		command, err := s.e.GetPaymentCommandJSON(referenceID)
		if err != nil {
			if errors.Is(err, offsync.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
			}
			s.l.Warn("Failed get payment command.", zap.String("reference_id", referenceID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, []byte(command))
	}
}

type establishPreApprovalRequest struct {
	AccountID              int64  `json:"account_id"`
	BillerAddress          string `json:"biller_address"`
	FundsPullPreApprovalID string `json:"funds_pull_pre_approval_id"`
	Type                   string `json:"funds_pull_pre_approval_type"`
	ExpirationTimestamp    int64  `json:"expiration_timestamp"`

	MaxCumulativeUnit            *string `json:"max_cumulative_unit,omitempty"`
	MaxCumulativeUnitValue       *int64  `json:"max_cumulative_unit_value,omitempty"`
	MaxCumulativeAmount          *int64  `json:"max_cumulative_amount,omitempty"`
	MaxCumulativeAmountCurrency  *string `json:"max_cumulative_amount_currency,omitempty"`
	MaxTransactionAmount         *int64  `json:"max_transaction_amount,omitempty"`
	MaxTransactionAmountCurrency *string `json:"max_transaction_amount_currency,omitempty"`

	Description *string `json:"description,omitempty"`
}

// EstablishPreApprovalHandler создает согласие на списание средств.
func (s *Server) EstablishPreApprovalHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req establishPreApprovalRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}
		if req.FundsPullPreApprovalID == "" || req.BillerAddress == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "funds_pull_pre_approval_id and biller_address are required"})
		}
		err := s.e.EstablishFundsPullPreApproval(engine.EstablishPreApprovalParams{
			AccountID:              req.AccountID,
			BillerAddress:          req.BillerAddress,
			FundsPullPreApprovalID: req.FundsPullPreApprovalID,
			Type:                   req.Type,
			ExpirationTimestamp:    req.ExpirationTimestamp,

			MaxCumulativeUnit:            req.MaxCumulativeUnit,
			MaxCumulativeUnitValue:       req.MaxCumulativeUnitValue,
			MaxCumulativeAmount:          req.MaxCumulativeAmount,
			MaxCumulativeAmountCurrency:  req.MaxCumulativeAmountCurrency,
			MaxTransactionAmount:         req.MaxTransactionAmount,
			MaxTransactionAmountCurrency: req.MaxTransactionAmountCurrency,

			Description: req.Description,
		})
		if err != nil {
			switch {
			case errors.Is(err, offsync.ErrAlreadyExists):
				return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
			case errors.Is(err, offsync.ErrExpired):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			s.l.Warn("Failed establish preapproval.", zap.String("id", req.FundsPullPreApprovalID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
		return c.JSON(http.StatusCreated, echo.Map{"funds_pull_pre_approval_id": req.FundsPullPreApprovalID})
	}
}

type approvePreApprovalRequest struct {
	Status protocol.PreApprovalStatus `json:"status"`
}

// ApprovePreApprovalHandler утверждает или отклоняет входящее согласие.
func (s *Server) ApprovePreApprovalHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		var req approvePreApprovalRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}
		if err := s.e.ApproveFundsPullPreApproval(id, req.Status); err != nil {
			if errors.Is(err, offsync.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "preapproval not found"})
			}
			s.l.Warn("Failed approve preapproval.", zap.String("id", id), zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"funds_pull_pre_approval_id": id})
	}
}

func (s *Server) ListPreApprovalsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		accountID, err := strconv.ParseInt(c.Param("account_id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account_id"})
		}
		recs, err := s.e.GetFundsPullPreApprovals(accountID)
		if err != nil {
			s.l.Warn("Failed list preapprovals.", zap.Int64("account_id", accountID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"preapprovals": recs})
	}
}
