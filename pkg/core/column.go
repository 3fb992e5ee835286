package core

import "strings"

// DataType is the coarse classification of a column's native type.
type DataType string

// DataType constants.
const (
	DataTypeUnknown  DataType = "unknown"
	DataTypeBool     DataType = "bool"
	DataTypeInteger  DataType = "integer"
	DataTypeFloat    DataType = "float"
	DataTypeDecimal  DataType = "decimal"
	DataTypeString   DataType = "string"
	DataTypeDate     DataType = "date"
	DataTypeTime     DataType = "time"
	DataTypeDateTime DataType = "datetime"
	DataTypeBlob     DataType = "blob"
	DataTypeJSON     DataType = "json"
	DataTypeUUID     DataType = "uuid"
)

// TableColumn is owned data about a result column.
type TableColumn struct {
	Ordinal int
	Name    string
	Type    DataType
}

var integerTypes = map[string]bool{
	"int": true, "integer": true, "smallint": true, "bigint": true, "tinyint": true,
	"mediumint": true, "hugeint": true, "int2": true, "int4": true, "int8": true,
	"ubigint": true, "uinteger": true, "usmallint": true, "utinyint": true,
	"serial": true, "bigserial": true, "smallserial": true,
}

// DataTypeFromNative classifies a driver-reported type name
// (e.g. "VARCHAR", "int4", "TIMESTAMP WITH TIME ZONE").
func DataTypeFromNative(name string) DataType {
	n := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = strings.TrimSpace(n[:i])
	}
	n = strings.TrimSuffix(strings.TrimPrefix(n, "unsigned "), " unsigned")
	switch {
	case n == "":
		return DataTypeUnknown
	case n == "bool" || n == "boolean":
		return DataTypeBool
	case n == "uuid":
		return DataTypeUUID
	case n == "json" || n == "jsonb":
		return DataTypeJSON
	case integerTypes[n]:
		return DataTypeInteger
	case n == "decimal" || n == "numeric":
		return DataTypeDecimal
	case strings.HasPrefix(n, "float") || n == "double" || n == "double precision" || n == "real":
		return DataTypeFloat
	case n == "date":
		return DataTypeDate
	case strings.HasPrefix(n, "timestamp") || n == "datetime":
		return DataTypeDateTime
	case strings.HasPrefix(n, "time"):
		return DataTypeTime
	case strings.Contains(n, "blob") || n == "bytea" || strings.Contains(n, "binary"):
		return DataTypeBlob
	case strings.Contains(n, "char") || strings.Contains(n, "text") || n == "string" || n == "enum":
		return DataTypeString
	default:
		return DataTypeUnknown
	}
}
