package adapters

import (
	"context"
	"os"
	"testing"

	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/stretchr/testify/require"
)

// TestPostgresLedger runs the ledger contract against a real database.
// Set DATABASE_URL to enable it.
func TestPostgresLedger(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	l, err := NewPostgresLedger(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(l.Close)
	require.NoError(t, l.Migrate(ctx))

	runLedgerContract(t, func(*testing.T) ports.AssignmentLedger { return l })
}
