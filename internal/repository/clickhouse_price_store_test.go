package repository

import "testing"

func TestQualifiedTable(t *testing.T) {
	cases := []struct {
		db, table string
		want      string
		wantErr   bool
	}{
		{"edelweiss", "daily_bars", "edelweiss.daily_bars", false},
		{"", "daily_bars", "daily_bars", false},
		{"edelweiss", "bars; DROP TABLE x", "", true},
		{"bad-db", "daily_bars", "", true},
	}
	for _, tc := range cases {
		got, err := qualifiedTable(tc.db, tc.table)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s.%s: expected error", tc.db, tc.table)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%s.%s = %q, %v; want %q", tc.db, tc.table, got, err, tc.want)
		}
	}
}
