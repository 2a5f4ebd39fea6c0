package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Docuchat/internal/logger"
	"github.com/markdave123-py/Docuchat/internal/models"
)

// scriptedConn fails the first `failures` queries with the scripted error
// and then answers every query with a single-row version result. It lets
// us drive the unique-violation retry in CreateDocument without Postgres.
type scriptedConn struct {
	failures int
	err      error
	calls    int
	version  int64
}

func (c *scriptedConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, c.err
	}
	return &versionRows{version: c.version}, nil
}

func (c *scriptedConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *scriptedConn) Close() error              { return nil }
func (c *scriptedConn) Begin() (driver.Tx, error) { return nil, errors.New("begin not supported") }

type versionRows struct {
	version int64
	done    bool
}

func (r *versionRows) Columns() []string { return []string{"version"} }
func (r *versionRows) Close() error      { return nil }
func (r *versionRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = r.version
	return nil
}

type scriptedConnector struct{ conn *scriptedConn }

func (c *scriptedConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c *scriptedConnector) Driver() driver.Driver                        { return nil }

func scriptedClient(conn *scriptedConn) (*DatabaseClient, *sql.DB) {
	sqlDB := sql.OpenDB(&scriptedConnector{conn: conn})
	sqlDB.SetMaxOpenConns(1)
	return &DatabaseClient{db: sqlDB, log: logger.NewNop()}, sqlDB
}

func uploadDoc() *models.Document {
	return &models.Document{
		ID:        "doc-1",
		OwnerKind: models.ScopeUser,
		OwnerID:   "u1",
		FileName:  "report.txt",
		Status:    "Queued",
	}
}

func TestCreateDocumentRetriesVersionConflict(t *testing.T) {
	conn := &scriptedConn{
		failures: 1,
		err:      &pgconn.PgError{Code: "23505"},
		version:  2,
	}
	client, sqlDB := scriptedClient(conn)
	defer sqlDB.Close()

	doc := uploadDoc()
	require.NoError(t, client.CreateDocument(context.Background(), doc))
	assert.Equal(t, 2, doc.Version)
	assert.Equal(t, 2, conn.calls)
}

func TestCreateDocumentGivesUpAfterRepeatedConflicts(t *testing.T) {
	conn := &scriptedConn{
		failures: 100,
		err:      &pgconn.PgError{Code: "23505"},
	}
	client, sqlDB := scriptedClient(conn)
	defer sqlDB.Close()

	err := client.CreateDocument(context.Background(), uploadDoc())
	require.Error(t, err)
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23505", pgErr.Code)
	assert.Equal(t, 5, conn.calls)
}

func TestCreateDocumentDoesNotRetryOtherErrors(t *testing.T) {
	conn := &scriptedConn{
		failures: 100,
		err:      &pgconn.PgError{Code: "42P01"},
	}
	client, sqlDB := scriptedClient(conn)
	defer sqlDB.Close()

	err := client.CreateDocument(context.Background(), uploadDoc())
	require.Error(t, err)
	assert.Equal(t, 1, conn.calls)
}
