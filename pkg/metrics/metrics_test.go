package metrics

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStore(t *testing.T) {
	okBefore := testutil.ToFloat64(StoreOperations.WithLabelValues("memory", "items.find", "ok"))
	errBefore := testutil.ToFloat64(StoreOperations.WithLabelValues("memory", "items.find", "error"))

	ObserveStore("memory", "items.find", nil)
	ObserveStore("memory", "items.find", errors.New("down"))
	ObserveStore("memory", "items.find", errors.New("down"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(StoreOperations.WithLabelValues("memory", "items.find", "ok")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(StoreOperations.WithLabelValues("memory", "items.find", "error")))
}

func TestObserveDBStats(t *testing.T) {
	ObserveDBStats("sqlite", sql.DBStats{OpenConnections: 3, Idle: 2, InUse: 1})

	assert.Equal(t, 3.0, testutil.ToFloat64(DBOpenConns.WithLabelValues("sqlite")))
	assert.Equal(t, 2.0, testutil.ToFloat64(DBIdleConns.WithLabelValues("sqlite")))
	assert.Equal(t, 1.0, testutil.ToFloat64(DBInUseConns.WithLabelValues("sqlite")))
}
