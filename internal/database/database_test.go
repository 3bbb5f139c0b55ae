package database

import "testing"

func TestRebindPostgres(t *testing.T) {
	db := &DB{driver: "postgres"}

	got := db.Rebind(`UPDATE users SET username = ?, updated_at = ? WHERE id = ?`)
	want := `UPDATE users SET username = $1, updated_at = $2 WHERE id = $3`
	if got != want {
		t.Fatalf("rebind mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestRebindMySQLPassthrough(t *testing.T) {
	db := &DB{driver: "mysql"}

	q := `DELETE FROM sessions WHERE id = ?`
	if got := db.Rebind(q); got != q {
		t.Fatalf("expected mysql query unchanged, got %s", got)
	}
}

func TestRebindNoPlaceholders(t *testing.T) {
	db := &DB{driver: "postgres"}

	q := `SELECT COUNT(*) FROM sessions`
	if got := db.Rebind(q); got != q {
		t.Fatalf("expected query unchanged, got %s", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("sqlite", "file.db"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
