package search

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
)

// ParamType defines how a search parameter maps to SQL.
type ParamType int

const (
	ParamToken  ParamType = iota // exact match on a code column
	ParamDate                    // supports prefixes (gt, lt, ge, le, eq, ne)
	ParamString                  // case-insensitive prefix match, supports :exact, :contains
	ParamNumber                  // supports prefixes (gt, lt, ge, le, eq, ne)
)

// ParamConfig maps a search parameter name to its database column.
type ParamConfig struct {
	Type   ParamType
	Column string
}

// Query builds SQL WHERE clauses from request search parameters.
// It encapsulates the common search pattern used by the domain repositories.
type Query struct {
	table   string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

// NewQuery creates a Query for the given table and select columns.
func NewQuery(table, cols string) *Query {
	return &Query{
		table: table,
		cols:  cols,
		idx:   1,
	}
}

// Idx returns the next available parameter index.
func (q *Query) Idx() int { return q.idx }

// Add appends a raw WHERE clause fragment (without leading "AND").
func (q *Query) Add(clause string, args ...interface{}) {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx += len(args)
}

// AddToken adds an exact-match clause on a code column.
func (q *Query) AddToken(column, value string) {
	clause, args, nextIdx := TokenClause(column, value, q.idx)
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx = nextIdx
}

// AddDate adds a date clause with prefix support (gt, lt, ge, le, eq, ne).
func (q *Query) AddDate(column, value string) {
	clause, args, nextIdx := DateClause(column, value, q.idx)
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx = nextIdx
}

// AddString adds a string clause with modifier support (exact, contains, prefix).
func (q *Query) AddString(column, value string, modifier Modifier) {
	clause, args, nextIdx := StringClause(column, value, modifier, q.idx)
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx = nextIdx
}

// AddNumber adds a numeric clause with prefix support.
func (q *Query) AddNumber(column, value string) {
	clause, args, nextIdx := NumberClause(column, value, q.idx)
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx = nextIdx
}

// ApplyParam applies a single search parameter using its config.
func (q *Query) ApplyParam(config ParamConfig, value string, modifier Modifier) {
	switch config.Type {
	case ParamDate:
		q.AddDate(config.Column, value)
	case ParamToken:
		q.AddToken(config.Column, value)
	case ParamString:
		q.AddString(config.Column, value, modifier)
	case ParamNumber:
		q.AddNumber(config.Column, value)
	}
}

// ApplyParams applies all matching search parameters from the given map.
// Parameter names may carry a modifier suffix (e.g. "name:contains").
func (q *Query) ApplyParams(params map[string]string, configs map[string]ParamConfig) {
	for name, value := range params {
		base, modifier := ParseParamModifier(name)
		if config, ok := configs[base]; ok {
			q.ApplyParam(config, value, modifier)
		}
	}
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *Query) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

// CountSQL returns the count query SQL.
func (q *Query) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", q.table, q.where)
}

// CountArgs returns the arguments for the count query.
func (q *Query) CountArgs() []interface{} {
	return q.args
}

// DataSQL returns the data query SQL with ORDER BY and LIMIT/OFFSET.
func (q *Query) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.table, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
	return sql
}

// DataArgs returns the arguments for the data query (search args + limit + offset).
func (q *Query) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}

// ApplySort processes a sort parameter and sets ORDER BY using config column
// mappings. The value is a comma-separated list of param names, each optionally
// prefixed with - for DESC. Falls back to defaultOrder when nothing matches.
func (q *Query) ApplySort(sortParam, defaultOrder string, configs map[string]ParamConfig) {
	if sortParam == "" {
		q.orderBy = defaultOrder
		return
	}
	var parts []string
	for _, field := range strings.Split(sortParam, ",") {
		field = strings.TrimSpace(field)
		desc := false
		if strings.HasPrefix(field, "-") {
			desc = true
			field = field[1:]
		}
		if config, ok := configs[field]; ok {
			if desc {
				parts = append(parts, config.Column+" DESC")
			} else {
				parts = append(parts, config.Column+" ASC")
			}
		}
	}
	if len(parts) > 0 {
		q.orderBy = strings.Join(parts, ", ")
	} else {
		q.orderBy = defaultOrder
	}
}

// ExtractParams extracts search parameters from the query string, excluding
// control parameters (_count, _offset, _sort and anything else underscored).
// Unknown params are included; ApplyParams ignores ones not in its config.
func ExtractParams(c echo.Context) map[string]string {
	params := map[string]string{}
	for k, v := range c.QueryParams() {
		if len(v) == 0 || strings.HasPrefix(k, "_") {
			continue
		}
		params[k] = v[0]
	}
	return params
}
