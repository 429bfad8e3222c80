// Package edm describes the EDM primitive type kinds that tag OData primitive
// values and the minimal entity metadata the query engine needs to resolve
// property paths.
package edm

import (
	"fmt"
	"strings"
)

// PrimitiveKind identifies an EDM primitive type.
type PrimitiveKind int

// Supported primitive kinds.
const (
	Unknown PrimitiveKind = iota
	Binary
	Boolean
	Byte
	Date
	DateTimeOffset
	Decimal
	Double
	Duration
	Guid
	Int16
	Int32
	Int64
	SByte
	Single
	String
	TimeOfDay
)

var kindNames = map[PrimitiveKind]string{
	Binary:         "Edm.Binary",
	Boolean:        "Edm.Boolean",
	Byte:           "Edm.Byte",
	Date:           "Edm.Date",
	DateTimeOffset: "Edm.DateTimeOffset",
	Decimal:        "Edm.Decimal",
	Double:         "Edm.Double",
	Duration:       "Edm.Duration",
	Guid:           "Edm.Guid",
	Int16:          "Edm.Int16",
	Int32:          "Edm.Int32",
	Int64:          "Edm.Int64",
	SByte:          "Edm.SByte",
	Single:         "Edm.Single",
	String:         "Edm.String",
	TimeOfDay:      "Edm.TimeOfDay",
}

var kindsByName = func() map[string]PrimitiveKind {
	m := make(map[string]PrimitiveKind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// TypeName returns the qualified EDM name, e.g. "Edm.Int32".
func (k PrimitiveKind) TypeName() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Edm.Unknown"
}

// String implements fmt.Stringer.
func (k PrimitiveKind) String() string {
	return k.TypeName()
}

// ParseKind resolves a qualified ("Edm.Int32") or bare ("Int32") type name.
func ParseKind(name string) (PrimitiveKind, error) {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, "Edm.") {
		name = "Edm." + name
	}
	if k, ok := kindsByName[name]; ok {
		return k, nil
	}
	return Unknown, fmt.Errorf("unknown EDM primitive type: %s", name)
}

// IsIntegral reports whether k is one of the integer kinds.
func (k PrimitiveKind) IsIntegral() bool {
	switch k {
	case Byte, SByte, Int16, Int32, Int64:
		return true
	}
	return false
}

// IsNumeric reports whether k is an integer, floating point or decimal kind.
func (k PrimitiveKind) IsNumeric() bool {
	return k.IsIntegral() || k == Single || k == Double || k == Decimal
}

// IsTemporal reports whether k carries a date, time or timestamp.
func (k PrimitiveKind) IsTemporal() bool {
	return k == Date || k == DateTimeOffset || k == TimeOfDay
}
