package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T) *LocalExecutorService {
	t.Helper()

	executor := NewLocalExecutorService(":memory:")
	require.NoError(t, executor.Initialize())
	t.Cleanup(func() {
		_ = executor.Close()
	})

	for _, statement := range []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)",
		"INSERT INTO users (name, age) VALUES ('alice', 30), ('bob', 25), ('carol', 41)",
	} {
		result, err := executor.ExecuteSQL(statement)
		require.NoError(t, err)
		require.True(t, result.Success, result.Message)
	}
	return executor
}

func TestLocalExecutor_Select(t *testing.T) {
	executor := newTestExecutor(t)

	result, err := executor.ExecuteSQL("SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, "SELECT", result.QueryType)
	assert.Equal(t, 3, result.RowCount)
	assert.Equal(t, []string{"id", "name"}, result.Columns)
	require.Len(t, result.Data, 3)
	assert.Equal(t, "alice", result.Data[0]["name"])
}

func TestLocalExecutor_Aggregate(t *testing.T) {
	executor := newTestExecutor(t)

	result, err := executor.ExecuteSQL("SELECT COUNT(*) FROM users")
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.True(t, result.IsAggregateQuery)
	require.NotNil(t, result.AggregateResult)
	assert.Equal(t, "COUNT", result.AggregateResult.Function)
	assert.Equal(t, "Total Count", result.AggregateResult.DisplayName)
	assert.EqualValues(t, 3, result.AggregateResult.Value)
	assert.Equal(t, 1, result.RowCount)
}

func TestLocalExecutor_MultiRowAggregateStaysTabular(t *testing.T) {
	executor := newTestExecutor(t)

	// GROUP BY yields several rows, so it must not collapse into the
	// single-value aggregate payload.
	result, err := executor.ExecuteSQL("SELECT age, COUNT(*) FROM users GROUP BY age")
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.False(t, result.IsAggregateQuery)
	assert.Nil(t, result.AggregateResult)
	assert.Equal(t, 3, result.RowCount)
}

func TestLocalExecutor_Mutation(t *testing.T) {
	executor := newTestExecutor(t)

	result, err := executor.ExecuteSQL("UPDATE users SET age = age + 1 WHERE age < 40")
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, "UPDATE", result.QueryType)
	assert.Equal(t, 2, result.AffectedRows)
	assert.Contains(t, result.Message, "UPDATE operation completed successfully")
}

func TestLocalExecutor_SyntaxError(t *testing.T) {
	executor := newTestExecutor(t)

	result, err := executor.ExecuteSQL("SELEKT * FROM users")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "SQL syntax error")
}

func TestLocalExecutor_Uninitialized(t *testing.T) {
	executor := NewLocalExecutorService(":memory:")

	_, err := executor.ExecuteSQL("SELECT 1")
	assert.Error(t, err)
}

func TestQueryTypeOf(t *testing.T) {
	tests := map[string]string{
		"SELECT * FROM users":          "SELECT",
		"  insert into users values ()": "INSERT",
		"Update users set a = 1":       "UPDATE",
		"DELETE FROM users":            "DELETE",
		"CREATE TABLE t (a)":           "CREATE",
		"DROP TABLE t":                 "DROP",
		"EXPLAIN SELECT 1":             "EXPLAIN",
		"VACUUM":                       "UNKNOWN",
	}
	for sqlText, expected := range tests {
		assert.Equal(t, expected, queryTypeOf(sqlText), sqlText)
	}
}

func TestAggregateDetection(t *testing.T) {
	assert.True(t, isAggregateSQL("SELECT COUNT(*) FROM users"))
	assert.True(t, isAggregateSQL("select sum(total) from orders"))
	assert.False(t, isAggregateSQL("SELECT id FROM users"))

	assert.Equal(t, "SUM", detectAggregateFunction("SELECT SUM(total) FROM orders"))
	assert.Equal(t, "AGGREGATE", detectAggregateFunction("SELECT a FROM t GROUP BY a"))
	assert.Equal(t, "Average", aggregateDisplayName("AVG"))
	assert.Equal(t, "Result", aggregateDisplayName("AGGREGATE"))
}
