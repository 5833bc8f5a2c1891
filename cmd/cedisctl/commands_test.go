package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traspasos-api/internal/application/authz"
	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

type mockStockWriter struct{ mock.Mock }

func (m *mockStockWriter) AdjustStock(ctx context.Context, actor authz.Actor, req dto.StockAdjustmentRequest) ([]*entity.StockMovement, error) {
	args := m.Called(ctx, actor, req)
	movs, _ := args.Get(0).([]*entity.StockMovement)
	return movs, args.Error(1)
}

func (m *mockStockWriter) SetMinStock(ctx context.Context, actor authz.Actor, req dto.SetMinStockRequest) (*entity.InventoryLine, error) {
	args := m.Called(ctx, actor, req)
	line, _ := args.Get(0).(*entity.InventoryLine)
	return line, args.Error(1)
}

func counted(item string, qty int64) dto.StockAdjustmentItem {
	return dto.StockAdjustmentItem{ItemID: item, CountedQuantity: &qty}
}

func firstItem(id string) any {
	return mock.MatchedBy(func(r dto.StockAdjustmentRequest) bool {
		return len(r.Items) > 0 && r.Items[0].ItemID == id
	})
}

func TestImportStock_LoteFallidoReportaLoAplicado(t *testing.T) {
	w := new(mockStockWriter)
	w.On("AdjustStock", mock.Anything, systemActor, firstItem("a")).
		Return([]*entity.StockMovement{{ID: "m1"}, {ID: "m2"}}, nil).Once()
	w.On("AdjustStock", mock.Anything, systemActor, firstItem("c")).
		Return(nil, errors.New("conexión perdida")).Once()
	w.On("SetMinStock", mock.Anything, systemActor, mock.MatchedBy(func(r dto.SetMinStockRequest) bool {
		return r.ItemID == "a"
	})).Return(&entity.InventoryLine{}, nil).Once()

	items := []dto.StockAdjustmentItem{counted("a", 1), counted("b", 2), counted("c", 3)}
	mins := []dto.SetMinStockRequest{
		{BranchID: "suc-1", ItemID: "a", MinStock: 5},
		{BranchID: "suc-1", ItemID: "c", MinStock: 9},
	}

	moved, setMins, err := importStock(context.Background(), w, "suc-1", "importación prueba.csv", items, mins, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renglones 3-3")
	assert.Contains(t, err.Error(), "aplicados 1-2")
	assert.Equal(t, 2, moved)
	assert.Equal(t, 1, setMins, "el mínimo del lote confirmado se fija antes del fallo")

	w.AssertExpectations(t)
	w.AssertNotCalled(t, "SetMinStock", mock.Anything, mock.Anything, mock.MatchedBy(func(r dto.SetMinStockRequest) bool {
		return r.ItemID == "c"
	}))
}

func TestImportStock_TodosLosLotes(t *testing.T) {
	w := new(mockStockWriter)
	w.On("AdjustStock", mock.Anything, systemActor, mock.MatchedBy(func(r dto.StockAdjustmentRequest) bool {
		return r.BranchID == "suc-1" && r.Reason == entity.ReasonImport && len(r.Items) <= 2
	})).Return([]*entity.StockMovement{{ID: "m"}}, nil).Times(2)
	w.On("SetMinStock", mock.Anything, systemActor, mock.Anything).Return(&entity.InventoryLine{}, nil).Once()

	items := []dto.StockAdjustmentItem{counted("a", 1), counted("b", 2), counted("c", 3)}
	mins := []dto.SetMinStockRequest{{BranchID: "suc-1", ItemID: "c", MinStock: 4}}

	moved, setMins, err := importStock(context.Background(), w, "suc-1", "importación ok.csv", items, mins, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.Equal(t, 1, setMins)
	w.AssertExpectations(t)
}
