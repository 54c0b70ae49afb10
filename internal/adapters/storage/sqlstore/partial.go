package sqlstore

import (
	sq "github.com/Masterminds/squirrel"
)

type assignment struct {
	column string
	value  any
}

// assignments es la lista (columna, valor) de un UPDATE parcial.
// El orden de los set() define el orden del SET y de los args.
type assignments []assignment

func (a *assignments) set(column string, value any) {
	*a = append(*a, assignment{column: column, value: value})
}

// update arma "UPDATE table SET ... WHERE key = ?" con los placeholders del dialecto.
// Sin asignaciones el SET queda "key = key": no cambia nada pero toca la fila.
func (a assignments) update(d Dialect, table, key string, id any) (string, []any, error) {
	b := d.builder().Update(table)
	if len(a) == 0 {
		b = b.Set(key, sq.Expr(key))
	}
	for _, as := range a {
		b = b.Set(as.column, as.value)
	}
	return b.Where(sq.Eq{key: id}).ToSql()
}
