package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
)

func inTransit() *entity.Transfer {
	return &entity.Transfer{
		ID: "t-1", OriginBranchID: "cedis", DestinationBranchID: "suc-1", State: entity.TransferInTransit,
		Lines: []entity.TransferLine{
			{ID: "l-1", ItemID: "x", QuantitySent: 20},
			{ID: "l-2", ItemID: "y", QuantitySent: 5},
		},
	}
}

func TestTransfer_ReceiveConDiferencia(t *testing.T) {
	tr := inTransit()
	require.NoError(t, tr.Receive(map[string]int64{"x": 18}, "u-suc", time.Now()))

	assert.Equal(t, entity.TransferReceived, tr.State)
	x, _ := tr.Line("x")
	y, _ := tr.Line("y")
	assert.Equal(t, int64(18), *x.QuantityReceived)
	assert.Equal(t, int64(2), x.Discrepancy())
	assert.Equal(t, int64(5), *y.QuantityReceived, "renglón omitido = recibido lo enviado")
	assert.Zero(t, y.Discrepancy())
	assert.True(t, tr.HasDiscrepancy())
	assert.Equal(t, int64(25), tr.TotalSent())
	assert.Equal(t, int64(23), tr.TotalReceived())
	require.NotNil(t, tr.ReceivedAt)
}

func TestTransfer_ReceiveDosVeces(t *testing.T) {
	tr := inTransit()
	require.NoError(t, tr.Receive(nil, "u", time.Now()))
	err := tr.Receive(nil, "u", time.Now())
	assert.ErrorIs(t, err, domain.ErrAlreadyReceived)
}

func TestTransfer_CreadoNoSeRecibe(t *testing.T) {
	tr := inTransit()
	tr.State = entity.TransferCreated
	assert.ErrorIs(t, tr.Receive(nil, "u", time.Now()), domain.ErrInvalidStateTransition)
}

func TestTransferLine_SinConfirmar(t *testing.T) {
	l := entity.TransferLine{ItemID: "x", QuantitySent: 3}
	assert.False(t, l.Confirmed())
	assert.Zero(t, l.Discrepancy())
}

func TestShortage_Urgencia(t *testing.T) {
	cases := []struct {
		current, min int64
		want         string
	}{
		{0, 10, entity.UrgencyUrgent},
		{2, 10, entity.UrgencyHigh},
		{4, 10, entity.UrgencyNormal},
		{8, 10, entity.UrgencyLow},
	}
	for _, c := range cases {
		s := entity.Shortage{Current: c.current, Minimum: c.min}
		assert.Equal(t, c.want, s.SuggestedUrgency(), "current=%d min=%d", c.current, c.min)
		assert.Equal(t, c.min-c.current, s.Missing())
	}
}
