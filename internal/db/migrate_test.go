package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrateURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"postgres://u:p@localhost:5432/imaginarte?sslmode=disable", "pgx5://u:p@localhost:5432/imaginarte?sslmode=disable"},
		{"postgresql://u:p@db/imaginarte", "pgx5://u:p@db/imaginarte"},
		{"pgx5://u:p@db/imaginarte", "pgx5://u:p@db/imaginarte"},
	}
	for _, tc := range cases {
		if got := MigrateURL(tc.in); got != tc.want {
			t.Errorf("MigrateURL(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		t.Fatal(err)
	}
	var up, down int
	for _, f := range files {
		switch {
		case strings.HasSuffix(f, ".up.sql"):
			up++
		case strings.HasSuffix(f, ".down.sql"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Fatalf("up=%d down=%d migrations", up, down)
	}
}
