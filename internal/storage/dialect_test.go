package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestRebind(t *testing.T) {
	q := "UPDATE notes SET heading = ?, content = ? WHERE id = ? AND user_id = ?"
	if got := (dialect{name: DriverSQLite}).rebind(q); got != q {
		t.Fatalf("sqlite rebind changed query: %s", got)
	}
	want := "UPDATE notes SET heading = $1, content = $2 WHERE id = $3 AND user_id = $4"
	if got := (dialect{name: DriverPostgres}).rebind(q); got != want {
		t.Fatalf("postgres rebind = %s", got)
	}
}

func TestTimeArg(t *testing.T) {
	ts := time.Date(2025, 7, 1, 9, 30, 0, 5, time.FixedZone("GST", 4*3600))
	got := (dialect{name: DriverSQLite}).timeArg(ts)
	if got != "2025-07-01T05:30:00.000000005Z" {
		t.Fatalf("sqlite timeArg = %v", got)
	}
	var back dbTime
	if err := back.Scan(got); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !back.Equal(ts) {
		t.Fatalf("round trip = %v", back.Time)
	}
	if _, ok := (dialect{name: DriverPostgres}).timeArg(ts).(time.Time); !ok {
		t.Fatalf("postgres timeArg should stay a time.Time")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	d := dialect{name: DriverPostgres}
	if !d.isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("23505 should be a unique violation")
	}
	if d.isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("23503 is a foreign key violation")
	}
	if d.isUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain errors are not unique violations")
	}
}

func TestDBDateScan(t *testing.T) {
	var d dbDate
	if err := d.Scan("2024-12-31"); err != nil || d.String() != "2024-12-31" {
		t.Fatalf("text scan = %v, %v", d, err)
	}
	if err := d.Scan(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2024-02-29" {
		t.Fatalf("time scan = %v, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Fatalf("expected error for int")
	}
}
