package dates

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Layout es el formato de fecha calendario usado en la API y en la base.
const Layout = "2006-01-02"

// Date es una fecha calendario (sin hora ni zona) sobre civil.Date.
// Se serializa como "YYYY-MM-DD" en JSON y se guarda como DATE.
type Date civil.Date

// Parse interpreta "YYYY-MM-DD".
func Parse(s string) (Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return Date(d), nil
}

// Of toma la parte de calendario de t en su propia zona.
func Of(t time.Time) Date {
	return Date(civil.DateOf(t))
}

// Civil expone el valor subyacente para aritmética de calendario.
func (d Date) Civil() civil.Date { return civil.Date(d) }

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string { return d.Civil().String() }

// Time devuelve la fecha a medianoche UTC.
func (d Date) Time() time.Time { return d.Civil().In(time.UTC) }

func (d Date) Before(o Date) bool { return d.Civil().Before(o.Civil()) }
func (d Date) After(o Date) bool  { return d.Civil().After(o.Civil()) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value guarda la fecha como texto; pgx y sqlite la convierten a DATE.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan acepta lo que devuelven los drivers: time.Time (pgx, sqlite con
// columna DATE) o texto.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = Of(v)
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	case nil:
		return fmt.Errorf("dates: cannot scan NULL into Date")
	default:
		return fmt.Errorf("dates: unsupported scan type %T", src)
	}
}

func (d *Date) scanText(s string) error {
	s = strings.TrimSpace(s)
	// sqlite puede devolver "2024-05-01 00:00:00+00:00" o RFC3339
	if len(s) >= len(Layout) {
		if parsed, err := Parse(s[:len(Layout)]); err == nil {
			*d = parsed
			return nil
		}
	}
	return fmt.Errorf("dates: invalid date %q", s)
}

// NullDate es la variante nullable, al estilo de sql.NullTime.
type NullDate struct {
	Date  Date
	Valid bool
}

func (n *NullDate) Scan(src any) error {
	if src == nil {
		n.Date, n.Valid = Date{}, false
		return nil
	}
	if err := n.Date.Scan(src); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n NullDate) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Date.Value()
}

// Ptr devuelve nil cuando no es válida.
func (n NullDate) Ptr() *Date {
	if !n.Valid {
		return nil
	}
	d := n.Date
	return &d
}

// FromPtr construye un NullDate desde un puntero opcional.
func FromPtr(d *Date) NullDate {
	if d == nil {
		return NullDate{}
	}
	return NullDate{Date: *d, Valid: true}
}
