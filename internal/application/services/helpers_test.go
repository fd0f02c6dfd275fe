package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/state"
	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/testutil"
)

func newTestStore(t *testing.T, holdings ...entities.Holding) (*state.Store, *testutil.MockHoldingRepository) {
	t.Helper()

	repo := testutil.NewMockHoldingRepository(holdings...)
	store, err := state.Open(context.Background(), repo, testutil.NewMockRefreshStateRepository(time.Time{}), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return store, repo
}

func testToken(id string) entities.Token {
	return testutil.CreateTestToken(testutil.TokenWithID(id))
}
