// Package e2e runs the workflow against a live database server.
//
// The tests are skipped unless PROCESSVIZ_E2E is set. Connection settings
// come from the usual configuration sources, e.g. MSSQL_SERVER, MSSQL_DB,
// MSSQL_UID and MSSQL_PWD for SQL Server.
package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/timeplus-io/processviz/pkg/config"
	"github.com/timeplus-io/processviz/pkg/store"
)

// LiveConfig loads the configuration for a live run, or skips the test
func LiveConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("PROCESSVIZ_E2E") == "" {
		t.Skip("Skipping live database test - set PROCESSVIZ_E2E=1 to run")
	}

	cfg, err := config.LoadConfig(os.Getenv("PROCESSVIZ_E2E_CONFIG"))
	require.NoError(t, err)
	// Keep the live table apart from the one the CLI writes
	cfg.Database.Table = "Process_e2e"
	cfg.Output.Dir = t.TempDir()
	require.NoError(t, cfg.Validate())
	return cfg
}

// OpenLiveStore connects to the configured database and drops the test table afterwards
func OpenLiveStore(t *testing.T, cfg *config.Config) *store.Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logrus.Infof("Connecting to %s", store.RedactedDSN(&cfg.Database))
	st, err := store.Open(ctx, &cfg.Database)
	require.NoError(t, err, "Failed to connect to database")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := st.DropTable(ctx); err != nil {
			logrus.Warnf("Failed to drop %s: %v", cfg.Database.Table, err)
		}
		_ = st.Close()
	})
	return st
}
