package repo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinWhere(t *testing.T) {
	require.Equal(t, "WHERE a = $1 AND b = $2", JoinWhere("a = $1", "b = $2"))
	require.Equal(t, "WHERE a = $1", JoinWhere("a = $1", ""))
	require.Equal(t, "", JoinWhere())
}

func TestFormatLimitOffset(t *testing.T) {
	require.Equal(t, "LIMIT 20 OFFSET 40", FormatLimitOffset(20, 40))
	require.Equal(t, "LIMIT 20", FormatLimitOffset(20, 0))
	require.Equal(t, "OFFSET 40", FormatLimitOffset(0, 40))
	require.Equal(t, "", FormatLimitOffset(0, 0))
}

func TestILike(t *testing.T) {
	require.Equal(t, "(u.first_name ILIKE $3 OR u.email ILIKE $3)", ILike(3, "u.first_name", "u.email"))
}

func TestJoin(t *testing.T) {
	require.Equal(t, "SELECT 1 FROM t WHERE x LIMIT 5", Join("SELECT 1 FROM t", "", "WHERE x", "LIMIT 5"))
}
