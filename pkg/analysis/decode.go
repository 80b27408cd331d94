package analysis

import (
	"errors"
	"fmt"

	"finance-dashboard/internal/entity"

	"github.com/tidwall/gjson"
)

var (
	errNotObject = errors.New("expected a JSON object")
	errNotArray  = errors.New("expected a JSON array")
)

// decodeKpiSet walks the object in document order; encoding/json into a map
// would lose the order the backend computed the indicators in.
func decodeKpiSet(raw []byte) (entity.KpiSet, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("decode kpis: invalid json")
	}
	doc := gjson.ParseBytes(raw)
	if doc.Type == gjson.Null {
		return entity.KpiSet{}, nil
	}
	if !doc.IsObject() {
		return nil, fmt.Errorf("decode kpis: %w", errNotObject)
	}

	set := entity.KpiSet{}
	index := map[string]int{}
	doc.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if i, dup := index[name]; dup {
			// last value wins, first position is kept
			set[i].Value = valueOf(value)
			return true
		}
		index[name] = len(set)
		set = append(set, entity.Kpi{Name: name, Value: valueOf(value)})
		return true
	})
	return set, nil
}

func decodeTable(raw []byte) (entity.Table, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("decode data: invalid json")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		return nil, fmt.Errorf("decode data: %w", errNotArray)
	}

	var (
		table entity.Table
		err   error
	)
	doc.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			err = fmt.Errorf("decode data: row %d: %w", len(table), errNotObject)
			return false
		}
		table = append(table, decodeRow(item))
		return true
	})
	if err != nil {
		return nil, err
	}
	if table == nil {
		table = entity.Table{}
	}
	return table, nil
}

func decodeRow(item gjson.Result) entity.Row {
	row := entity.Row{Values: map[string]entity.Value{}}
	item.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if _, dup := row.Values[name]; !dup {
			row.Keys = append(row.Keys, name)
		}
		row.Values[name] = valueOf(value)
		return true
	})
	return row
}

func valueOf(r gjson.Result) entity.Value {
	switch r.Type {
	case gjson.Number:
		return entity.Number(r.Num)
	case gjson.String:
		return entity.Text(r.Str)
	case gjson.True:
		return entity.Bool(true)
	case gjson.False:
		return entity.Bool(false)
	case gjson.JSON:
		return entity.Text(r.Raw)
	default:
		return entity.Null()
	}
}
