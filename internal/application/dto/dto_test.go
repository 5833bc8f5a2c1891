package dto_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/domain"
)

func ptr(v int64) *int64 { return &v }

func TestCreateTransferRequestInput_Validate(t *testing.T) {
	ok := dto.CreateTransferRequestInput{BranchID: "suc-1", ItemID: "p-1", Quantity: 5}
	assert.NoError(t, ok.Validate())

	cero := ok
	cero.Quantity = 0
	assert.True(t, errors.Is(cero.Validate(), domain.ErrInvalidInput))

	neg := ok
	neg.Quantity = -3
	assert.True(t, errors.Is(neg.Validate(), domain.ErrInvalidInput))

	urg := ok
	urg.Urgency = "critica"
	assert.True(t, errors.Is(urg.Validate(), domain.ErrInvalidInput))
}

func TestDispatchDirectInput_Validate(t *testing.T) {
	base := dto.DispatchDirectInput{
		OriginBranchID:      "cedis",
		DestinationBranchID: "suc-1",
		Lines:               []dto.TransferLineInput{{ItemID: "x", Quantity: 2}},
	}
	assert.NoError(t, base.Validate())

	mismo := base
	mismo.DestinationBranchID = "cedis"
	assert.ErrorIs(t, mismo.Validate(), domain.ErrInvalidInput)

	vacio := base
	vacio.Lines = nil
	assert.ErrorIs(t, vacio.Validate(), domain.ErrInvalidInput)

	dup := base
	dup.Lines = []dto.TransferLineInput{{ItemID: "x", Quantity: 2}, {ItemID: "x", Quantity: 1}}
	assert.ErrorIs(t, dup.Validate(), domain.ErrInvalidInput)

	cero := base
	cero.Lines = []dto.TransferLineInput{{ItemID: "x", Quantity: 0}}
	assert.ErrorIs(t, cero.Validate(), domain.ErrInvalidInput)
}

func TestConfirmReceiptInput_Validate(t *testing.T) {
	assert.NoError(t, dto.ConfirmReceiptInput{}.Validate())
	assert.NoError(t, dto.ConfirmReceiptInput{Lines: []dto.ReceivedLineInput{{ItemID: "x", QuantityReceived: 0}}}.Validate())

	neg := dto.ConfirmReceiptInput{Lines: []dto.ReceivedLineInput{{ItemID: "x", QuantityReceived: -1}}}
	assert.ErrorIs(t, neg.Validate(), domain.ErrInvalidInput)

	m := dto.ConfirmReceiptInput{Lines: []dto.ReceivedLineInput{{ItemID: "x", QuantityReceived: 18}}}.ReceivedMap()
	assert.Equal(t, map[string]int64{"x": 18}, m)
}

func TestStockAdjustmentRequest_Validate(t *testing.T) {
	ok := dto.StockAdjustmentRequest{BranchID: "suc-1", Items: []dto.StockAdjustmentItem{{ItemID: "x", Delta: ptr(-2)}}}
	assert.NoError(t, ok.Validate())

	conteo := dto.StockAdjustmentRequest{BranchID: "suc-1", Items: []dto.StockAdjustmentItem{{ItemID: "x", CountedQuantity: ptr(0)}}}
	assert.NoError(t, conteo.Validate())

	ambos := dto.StockAdjustmentRequest{BranchID: "suc-1", Items: []dto.StockAdjustmentItem{{ItemID: "x", Delta: ptr(1), CountedQuantity: ptr(3)}}}
	assert.ErrorIs(t, ambos.Validate(), domain.ErrInvalidInput)

	cero := dto.StockAdjustmentRequest{BranchID: "suc-1", Items: []dto.StockAdjustmentItem{{ItemID: "x", Delta: ptr(0)}}}
	assert.ErrorIs(t, cero.Validate(), domain.ErrInvalidInput)

	ninguno := dto.StockAdjustmentRequest{BranchID: "suc-1", Items: []dto.StockAdjustmentItem{{ItemID: "x"}}}
	assert.ErrorIs(t, ninguno.Validate(), domain.ErrInvalidInput)

	motivo := ok
	motivo.Reason = "sale"
	assert.ErrorIs(t, motivo.Validate(), domain.ErrInvalidInput)
}
