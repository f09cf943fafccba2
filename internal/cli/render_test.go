package cli

import (
	"bytes"
	"testing"

	"foundersbook-backend/internal/application/notifications"
	"foundersbook-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	pterm.DisableStyling()
}

func TestRenderParity(t *testing.T) {
	mp := domain.MonthlyParity{Year: 2024, Month: 3, TotalSpent: decimal.NewFromInt(450), UnassignedSpent: decimal.Zero, Settled: true}
	require.NoError(t, mp.SetPerFounder([]domain.FounderParity{{
		FounderID:            uuid.New(),
		Name:                 "Asha",
		ExpectedContribution: decimal.NewFromInt(270),
		ActualContribution:   decimal.NewFromInt(180),
		Disparity:            decimal.NewFromInt(-90),
	}}))

	var buf bytes.Buffer
	require.NoError(t, RenderParity(&buf, []domain.MonthlyParity{mp}))
	out := buf.String()
	assert.Contains(t, out, "2024-03")
	assert.Contains(t, out, "Asha")
	assert.Contains(t, out, "270.00")
	assert.Contains(t, out, "-90.00")
	assert.Contains(t, out, "Owes Money")
	assert.Contains(t, out, "450.00")
}

func TestRenderParity_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderParity(&buf, nil))
	assert.Equal(t, "No monthly parity data found.\n", buf.String())
}

func TestRenderSweep(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSweep(&buf, notifications.SweepReport{Kind: domain.NotificationTaskDue, Matched: 3, Sent: 2, Failed: 1}))
	assert.Contains(t, buf.String(), "task_due")
}

func TestParseKind(t *testing.T) {
	k, err := parseKind("overdue")
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationTaskOverdue, k)
	_, err = parseKind("weekly")
	assert.Error(t, err)
}

func TestCommandTree(t *testing.T) {
	a := NewCLIApp("test")
	for _, path := range [][]string{{"serve"}, {"migrate", "up"}, {"migrate", "down"}, {"scheduler"}, {"parity", "show"}, {"parity", "settle"}, {"notify", "sweep"}} {
		cmd, _, err := a.rootCmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
