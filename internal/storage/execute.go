package storage

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	fserr "fsintel/internal/errors"
)

// mutationKeywords are rejected anywhere in a statement once string
// literals are removed. The store's Execute surface is read-only by
// contract; writes go through the typed session/file methods.
// replace() the SQL function stays allowed; only REPLACE INTO is a write.
var mutationKeywords = regexp.MustCompile(
	`(?i)\b(insert|update|delete|drop|alter|create|attach|detach|vacuum|pragma|reindex|replace\s+into)\b`)

// stringLiteral matches single-quoted SQL literals, including escaped
// quotes ('').
var stringLiteral = regexp.MustCompile(`'(?:[^']|'')*'`)

// Execute runs a parameterized read-only query and returns the column
// names plus the result as row tuples. Statements that mutate state,
// contain multiple statements, or do not start with SELECT/WITH are
// rejected with QUERY_REJECTED before touching the database.
func (db *DB) Execute(query string, params []interface{}) ([]string, [][]interface{}, error) {
	if err := checkReadOnly(query); err != nil {
		return nil, nil, err
	}

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, nil, fserr.New(fserr.QueryRejected, "query failed", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var result [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		scanArgs := make([]interface{}, len(cols))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			values[i] = coerceValue(v)
		}
		result = append(result, values)
	}
	return cols, result, rows.Err()
}

// checkReadOnly validates that query is a single SELECT/WITH statement.
func checkReadOnly(query string) error {
	stripped := stripComments(query)
	stripped = stringLiteral.ReplaceAllString(stripped, "''")
	trimmed := strings.TrimSpace(stripped)
	if trimmed == "" {
		return fserr.New(fserr.QueryRejected, "empty statement", nil)
	}

	// Allow one trailing semicolon, nothing after it.
	if i := strings.Index(trimmed, ";"); i >= 0 {
		if strings.TrimSpace(trimmed[i+1:]) != "" {
			return fserr.New(fserr.QueryRejected, "multiple statements are not allowed", nil)
		}
		trimmed = trimmed[:i]
	}

	first := strings.ToUpper(firstWord(trimmed))
	if first != "SELECT" && first != "WITH" {
		return fserr.New(fserr.QueryRejected,
			fmt.Sprintf("only SELECT statements are allowed, got %s", first), nil)
	}

	if m := mutationKeywords.FindString(trimmed); m != "" {
		return fserr.New(fserr.QueryRejected,
			fmt.Sprintf("statement contains forbidden keyword %q", strings.ToUpper(m)), nil)
	}

	return nil
}

func stripComments(s string) string {
	var b strings.Builder
	for len(s) > 0 {
		if strings.HasPrefix(s, "--") {
			if i := strings.IndexByte(s, '\n'); i >= 0 {
				s = s[i+1:]
				b.WriteByte(' ')
				continue
			}
			break
		}
		if strings.HasPrefix(s, "/*") {
			if i := strings.Index(s, "*/"); i >= 0 {
				s = s[i+2:]
				b.WriteByte(' ')
				continue
			}
			break
		}
		b.WriteByte(s[0])
		s = s[1:]
	}
	return b.String()
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// coerceValue converts driver types into JSON-friendly values:
// byte slices and timestamps become strings, everything else passes
// through unchanged.
func coerceValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return formatTime(val)
	default:
		return v
	}
}
