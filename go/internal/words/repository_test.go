package words

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRows is a canned result set served by stubConnector.
type stubRows struct {
	cols []string
	data [][]driver.Value
	i    int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.i])
	r.i++
	return nil
}

type stubQuery struct {
	query string
	args  []driver.Value
}

// stubConnector answers every query with the next canned result set.
type stubConnector struct {
	results []*stubRows
	queries []stubQuery
}

func (c *stubConnector) Connect(context.Context) (driver.Conn, error) { return &stubConn{c: c}, nil }
func (c *stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, driver.ErrSkip }

type stubConn struct{ c *stubConnector }

func (s *stubConn) Prepare(query string) (driver.Stmt, error) { return &stubStmt{c: s.c, query: query}, nil }
func (s *stubConn) Close() error                              { return nil }
func (s *stubConn) Begin() (driver.Tx, error)                 { return nil, driver.ErrSkip }

type stubStmt struct {
	c     *stubConnector
	query string
}

func (s *stubStmt) Close() error  { return nil }
func (s *stubStmt) NumInput() int { return -1 }

func (s *stubStmt) Exec([]driver.Value) (driver.Result, error) { return nil, driver.ErrSkip }

func (s *stubStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.c.queries = append(s.c.queries, stubQuery{query: s.query, args: args})
	if len(s.c.results) == 0 {
		return &stubRows{}, nil
	}
	rows := s.c.results[0]
	s.c.results = s.c.results[1:]
	return rows, nil
}

func newStubRepository(t *testing.T, results ...*stubRows) (*Repository, *stubConnector) {
	t.Helper()
	conn := &stubConnector{results: results}
	db := sql.OpenDB(conn)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), conn
}

func TestRepository_Categories(t *testing.T) {
	repo, conn := newStubRepository(t, &stubRows{
		cols: []string{"category"},
		data: [][]driver.Value{{"Animals"}, {"Fruits"}},
	})

	cats, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Animals", "Fruits"}, cats)
	require.Len(t, conn.queries, 1)
	assert.Equal(t, listCategoriesQuery, conn.queries[0].query)
}

func TestRepository_CategoriesEmptyTable(t *testing.T) {
	repo, _ := newStubRepository(t, &stubRows{cols: []string{"category"}})

	cats, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)
}

func TestRepository_Entries(t *testing.T) {
	repo, conn := newStubRepository(t, &stubRows{
		cols: []string{"word", "category", "hint"},
		data: [][]driver.Value{
			{"CAT", "Animals", "Purrs"},
			{"DOG", "Animals", nil},
		},
	})

	entries, err := repo.Entries(context.Background(), []string{"Animals", "Animals"})
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Word: "CAT", Category: "Animals", Hint: "Purrs"},
		{Word: "DOG", Category: "Animals"},
	}, entries)

	require.Len(t, conn.queries, 1)
	require.Len(t, conn.queries[0].args, 1)
	assert.Equal(t, `{"Animals"}`, conn.queries[0].args[0])
}

func TestRepository_EntriesNoCategories(t *testing.T) {
	repo, conn := newStubRepository(t)

	entries, err := repo.Entries(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, conn.queries)
}
