package repo

import (
	"fmt"
	"strings"
)

// Join glues SQL fragments with single spaces, skipping empties.
func Join(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// JoinWhere renders a WHERE clause from AND-ed conditions, or "" when empty.
func JoinWhere(conditions ...string) string {
	nonEmpty := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if strings.TrimSpace(c) != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(nonEmpty, " AND ")
}

// FormatLimitOffset renders LIMIT/OFFSET, omitting parts that are zero.
func FormatLimitOffset(limit, offset int) string {
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	case limit > 0:
		return fmt.Sprintf("LIMIT %d", limit)
	case offset > 0:
		return fmt.Sprintf("OFFSET %d", offset)
	default:
		return ""
	}
}

// ILike renders a case-insensitive match of several columns against one
// placeholder, for search boxes.
func ILike(argIndex int, columns ...string) string {
	matches := make([]string, 0, len(columns))
	for _, col := range columns {
		matches = append(matches, fmt.Sprintf("%s ILIKE $%d", col, argIndex))
	}
	return "(" + strings.Join(matches, " OR ") + ")"
}
