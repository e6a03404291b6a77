package cass

import (
	"fmt"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
)

var protocolScalars = map[Kind]datatype.DataType{
	KindAscii:     datatype.Ascii,
	KindBigInt:    datatype.Bigint,
	KindBlob:      datatype.Blob,
	KindBoolean:   datatype.Boolean,
	KindCounter:   datatype.Counter,
	KindDate:      datatype.Date,
	KindDecimal:   datatype.Decimal,
	KindDouble:    datatype.Double,
	KindDuration:  datatype.Duration,
	KindFloat:     datatype.Float,
	KindInet:      datatype.Inet,
	KindInt:       datatype.Int,
	KindSmallInt:  datatype.Smallint,
	KindTime:      datatype.Time,
	KindTimestamp: datatype.Timestamp,
	KindTimeUUID:  datatype.Timeuuid,
	KindTinyInt:   datatype.Tinyint,
	KindUUID:      datatype.Uuid,
	KindVarChar:   datatype.Varchar,
	KindVarInt:    datatype.Varint,
}

// DataType converts t into its native protocol representation,
// used by codecs of the execution layer.
func (t ColumnType) DataType() (datatype.DataType, error) {
	if dt, ok := protocolScalars[t.Kind]; ok {
		return dt, nil
	}
	switch t.Kind {
	case KindList, KindSet:
		if t.Elem == nil {
			return nil, fmt.Errorf("%s without element type", t.Kind)
		}
		elem, err := t.Elem.DataType()
		if err != nil {
			return nil, err
		}
		if t.Kind == KindList {
			return datatype.NewList(elem), nil
		}
		return datatype.NewSet(elem), nil
	case KindMap:
		if t.Key == nil || t.Value == nil {
			return nil, fmt.Errorf("map without key or value type")
		}
		k, err := t.Key.DataType()
		if err != nil {
			return nil, err
		}
		v, err := t.Value.DataType()
		if err != nil {
			return nil, err
		}
		return datatype.NewMap(k, v), nil
	case KindTuple:
		elems, err := dataTypes(t.Elems)
		if err != nil {
			return nil, err
		}
		return datatype.NewTuple(elems...), nil
	case KindUDT:
		if t.UDT == nil {
			return nil, fmt.Errorf("udt without definition")
		}
		fields, err := dataTypes(t.UDT.FieldTypes)
		if err != nil {
			return nil, err
		}
		u, err := datatype.NewUserDefined(t.UDT.Keyspace, t.UDT.Name, t.UDT.FieldNames, fields)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	return nil, fmt.Errorf("no protocol type for %s", t.Kind)
}

func dataTypes(ts []ColumnType) ([]datatype.DataType, error) {
	ret := make([]datatype.DataType, len(ts))
	for i := range ts {
		dt, err := ts[i].DataType()
		if err != nil {
			return nil, err
		}
		ret[i] = dt
	}
	return ret, nil
}
