// Shared helpers for sqlkit CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mesh-intelligence/sqlkit/pkg/sqlite"
	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

// openDatabase resolves the database path and opens it with options from
// flags and config. The caller must defer db.Close().
func openDatabase() (types.Database, error) {
	path, err := resolveDatabasePath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	opts := types.DefaultOptions()
	opts.ReadOnly = flagReadOnly
	if flagReadOnly {
		opts.ReadWrite = false
		opts.Create = false
	}
	if configBusyTimeoutMS > 0 {
		opts.BusyTimeout = time.Duration(configBusyTimeoutMS) * time.Millisecond
	}
	if configCacheSize > 0 {
		opts.StatementCacheSize = configCacheSize
	}

	db, err := sqlite.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// parseParams converts CLI arguments to a positional parameter list.
// Each argument is parsed as JSON where possible, so numbers, booleans
// and null keep their types; anything else binds as text.
func parseParams(args []string) types.Params {
	if len(args) == 0 {
		return types.NoParams
	}
	values := make([]any, len(args))
	for i, arg := range args {
		values[i] = parseParamValue(arg)
	}
	return types.List(values...)
}

func parseParamValue(arg string) any {
	var parsed any
	if err := json.Unmarshal([]byte(arg), &parsed); err != nil {
		return arg // raw string when not valid JSON
	}
	// JSON numbers decode to float64; keep integral ones as int64.
	if f, ok := parsed.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return parsed
}

// printRows renders a result set as JSON (--json) or tab-separated text
// with a header line.
func printRows(rows []types.Row) error {
	if flagJSON {
		out := make([]map[string]any, len(rows))
		for i, row := range rows {
			obj := make(map[string]any, row.Len())
			for j, col := range row.Columns() {
				obj[col] = jsonValue(row.Index(j))
			}
			out[i] = obj
		}
		return printJSON(out)
	}

	if len(rows) == 0 {
		return nil
	}
	fmt.Println(strings.Join(rows[0].Columns(), "\t"))
	for _, row := range rows {
		cells := make([]string, row.Len())
		for i, v := range row.Values() {
			cells[i] = v.String()
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	return nil
}

// jsonValue maps a Value onto its JSON representation.
func jsonValue(v types.Value) any {
	switch v.Kind() {
	case types.KindInteger:
		return v.Int64()
	case types.KindReal:
		return v.Float64()
	case types.KindText:
		return v.Text()
	case types.KindBlob:
		return v.Blob() // base64 via encoding/json
	default:
		return nil
	}
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}
