package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"receiptly/internal/domain"
	"receiptly/internal/port"
)

// SaveToolName is the only tool exposed by the database agent.
const SaveToolName = "save-to-database"

// Save outcomes reported in SaveResult.AddedToDB.
const (
	SaveSucceeded = "Success"
	SaveFailed    = "Failed"
)

// ErrIncompleteToolCall is reported when save-to-database is called without every field.
var ErrIncompleteToolCall = errors.New("save-to-database requires every field")

// ReceiptWriter persists extracted data and returns the owning user id.
type ReceiptWriter interface {
	UpdateWithExtractedData(ctx context.Context, id uuid.UUID, data *domain.ExtractedData) (string, error)
}

// SaveResult is the payload returned by save-to-database. Store failures are
// reported here rather than as errors, so the step itself succeeds.
type SaveResult struct {
	AddedToDB string                `json:"addedToDb"`
	ReceiptID string                `json:"receiptId,omitempty"`
	UserID    string                `json:"userId,omitempty"`
	Data      *domain.ExtractedData `json:"data,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// DatabaseAgent asks a chat model to call save-to-database with the scanned data.
type DatabaseAgent struct {
	model  port.ChatModel
	writer ReceiptWriter
	logger *zap.Logger
}

// NewDatabaseAgent creates a DatabaseAgent.
func NewDatabaseAgent(model port.ChatModel, writer ReceiptWriter, logger *zap.Logger) *DatabaseAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatabaseAgent{model: model, writer: writer, logger: logger}
}

func (a *DatabaseAgent) Name() string { return "database" }

func (a *DatabaseAgent) Run(ctx context.Context, rc *RunContext) (any, error) {
	scan := rc.LatestScan()
	if scan == nil {
		return nil, fmt.Errorf("database agent invoked before a scan result exists")
	}

	resp, err := a.model.Complete(ctx, port.ChatRequest{
		System: databaseSystemPrompt,
		Messages: []port.ChatMessage{
			{Role: "user", Content: rc.Instruction},
			{Role: "user", Content: "Extracted receipt data:\n" + string(scan.Data)},
		},
		Tools: []port.ToolSpec{{
			Name:        SaveToolName,
			Description: saveToolDescription,
			Parameters:  json.RawMessage(saveToolParameters),
		}},
		ToolChoice: SaveToolName,
	})
	if err != nil {
		return nil, fmt.Errorf("database agent completion: %w", err)
	}

	for _, call := range resp.ToolCalls {
		if call.Name == SaveToolName {
			return a.SaveToDatabase(ctx, rc, call.Arguments)
		}
	}

	a.logger.Warn("database agent did not call save tool", zap.String("model", resp.Model))
	return &SaveResult{AddedToDB: SaveFailed, Error: "model did not call " + SaveToolName}, nil
}

// SaveToDatabase is the save-to-database tool handler. The store write runs in
// the save-receipt-to-database step; on success both routing keys are set at once.
func (a *DatabaseAgent) SaveToDatabase(ctx context.Context, rc *RunContext, raw json.RawMessage) (*SaveResult, error) {
	args, err := decodeSaveArgs(raw)
	if err != nil {
		a.logger.Warn("rejected save-to-database call", zap.Error(err))
		return &SaveResult{AddedToDB: SaveFailed, Error: err.Error()}, nil
	}

	receiptID, err := uuid.Parse(args.receiptID)
	if err != nil || receiptID != rc.Request.ReceiptID {
		return &SaveResult{
			AddedToDB: SaveFailed,
			Error:     fmt.Sprintf("receiptId %q does not match the receipt being processed", args.receiptID),
		}, nil
	}

	out, err := rc.Step.Run(ctx, "save-receipt-to-database", func(ctx context.Context) (any, error) {
		userID, err := a.writer.UpdateWithExtractedData(ctx, receiptID, args.data)
		if err != nil {
			a.logger.Error("saving extracted receipt failed", zap.String("receipt_id", receiptID.String()), zap.Error(err))
			return &SaveResult{AddedToDB: SaveFailed, Error: errorMessage(err)}, nil
		}
		return &SaveResult{
			AddedToDB: SaveSucceeded,
			ReceiptID: receiptID.String(),
			UserID:    userID,
			Data:      args.data,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	result := out.(*SaveResult)
	if result.AddedToDB == SaveSucceeded {
		rc.State.markSaved(result.ReceiptID)
	}
	return result, nil
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown Error"
}

type saveItem struct {
	Name       *string  `json:"name"`
	Quantity   *float64 `json:"quantity"`
	UnitPrice  *float64 `json:"unitPrice"`
	TotalPrice *float64 `json:"totalPrice"`
}

type saveArgs struct {
	FileDisplayName   *string     `json:"fileDisplayName"`
	ReceiptID         *string     `json:"receiptId"`
	MerchantName      *string     `json:"merchantName"`
	MerchantAddress   *string     `json:"merchantAddress"`
	MerchantContact   *string     `json:"merchantContact"`
	TransactionDate   *string     `json:"transactionDate"`
	TransactionAmount *string     `json:"transactionAmount"`
	ReceiptSummary    *string     `json:"receiptSummary"`
	Currency          *string     `json:"currency"`
	Items             *[]saveItem `json:"items"`
}

type decodedSave struct {
	receiptID string
	data      *domain.ExtractedData
}

func decodeSaveArgs(raw json.RawMessage) (*decodedSave, error) {
	var a saveArgs
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompleteToolCall, err)
	}

	var missing []string
	req := func(name string, v *string) {
		if v == nil {
			missing = append(missing, name)
		}
	}
	req("fileDisplayName", a.FileDisplayName)
	req("receiptId", a.ReceiptID)
	req("merchantName", a.MerchantName)
	req("merchantAddress", a.MerchantAddress)
	req("merchantContact", a.MerchantContact)
	req("transactionDate", a.TransactionDate)
	req("transactionAmount", a.TransactionAmount)
	req("receiptSummary", a.ReceiptSummary)
	req("currency", a.Currency)
	if a.Items == nil {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteToolCall, strings.Join(missing, ", "))
	}

	items := make(domain.LineItems, 0, len(*a.Items))
	for i, it := range *a.Items {
		if it.Name == nil || it.Quantity == nil || it.UnitPrice == nil || it.TotalPrice == nil {
			return nil, fmt.Errorf("%w: items[%d] is incomplete", ErrIncompleteToolCall, i)
		}
		items = append(items, domain.LineItem{
			Name:       *it.Name,
			Quantity:   *it.Quantity,
			UnitPrice:  *it.UnitPrice,
			TotalPrice: *it.TotalPrice,
		})
	}

	return &decodedSave{
		receiptID: *a.ReceiptID,
		data: &domain.ExtractedData{
			FileDisplayName:   *a.FileDisplayName,
			MerchantName:      *a.MerchantName,
			MerchantAddress:   *a.MerchantAddress,
			MerchantContact:   *a.MerchantContact,
			TransactionDate:   *a.TransactionDate,
			TransactionAmount: *a.TransactionAmount,
			ReceiptSummary:    *a.ReceiptSummary,
			Currency:          *a.Currency,
			Items:             items,
		},
	}, nil
}
