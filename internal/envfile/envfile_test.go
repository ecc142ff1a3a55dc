package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return New(path)
}

const quotingFixture = `Var_01='Value'
    Var_02='Value'
Var_03  ='Value'
    Var_04  ='Value'
Var_05=  'Value'
Var_06='Value'# Comment # kljkl
    Var_07='Value' # Comment
Var_08  ='Value' # Comment
    Var_09  ='Value' # Comment
Var_10=  'Value' # Comment
Var_11=  Value# Not a Comment
Var_12=  '#Value' # Comment
Var_13=  #Value# Not a Comment
Var_14=  'Va#lue' # Comment
Var_15=  Va# lue# Not a Comment
Var_16=  Va# lue # Comment
`

func TestGet(t *testing.T) {
	s := newTestStore(t, quotingFixture)

	tests := []struct {
		key  string
		want string
	}{
		{"Var_01", "Value"},
		{"Var_02", "Value"},
		{"Var_05", "Value"},
		{"Var_06", "Value"},
		{"Var_11", "Value# Not a Comment"},
		{"Var_12", "#Value"},
		{"Var_14", "Va#lue"},
		{"Var_16", "Va# lue"},
		{"Var_99", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			val, err := s.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%s) error: %v", tt.key, err)
			}
			if val != tt.want {
				t.Errorf("Get(%s) = %q, want %q", tt.key, val, tt.want)
			}
		})
	}
}

func TestGetLiteral(t *testing.T) {
	s := newTestStore(t, quotingFixture)

	tests := []struct {
		key  string
		want string
	}{
		{"Var_01", "'Value'"},
		{"Var_05", "  'Value'"},
		{"Var_10", "  'Value' # Comment"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			val, err := s.GetLiteral(tt.key)
			if err != nil {
				t.Fatalf("GetLiteral(%s) error: %v", tt.key, err)
			}
			if val != tt.want {
				t.Errorf("GetLiteral(%s) = %q, want %q", tt.key, val, tt.want)
			}
		})
	}
}

func TestSet(t *testing.T) {
	s := newTestStore(t, "")

	if err := s.Set("RADARR__API_KEY", "abc123"); err != nil {
		t.Fatal(err)
	}
	line, err := s.Line("RADARR__API_KEY")
	if err != nil {
		t.Fatal(err)
	}
	if line != "RADARR__API_KEY='abc123'" {
		t.Errorf("Line = %q, want single-quoted value", line)
	}

	// Replacing keeps a single definition.
	if err := s.Set("RADARR__API_KEY", "def456"); err != nil {
		t.Fatal(err)
	}
	val, _ := s.Get("RADARR__API_KEY")
	if val != "def456" {
		t.Errorf("Get after replace = %q, want def456", val)
	}
	keys, _ := s.Keys()
	count := 0
	for _, k := range keys {
		if k == "RADARR__API_KEY" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("key defined %d times, want 1", count)
	}
}

func TestSetEscapesSingleQuotes(t *testing.T) {
	s := newTestStore(t, "")
	if err := s.Set("PW", "it's"); err != nil {
		t.Fatal(err)
	}
	line, _ := s.Line("PW")
	if line != `PW='it'"'"'s'` {
		t.Errorf("Line = %q, want shell-escaped single quote", line)
	}
}

func TestSetDeduplicates(t *testing.T) {
	s := newTestStore(t, "DUP='one'\nOTHER='x'\nDUP='two'\n")
	if err := s.Set("DUP", "three"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "DUP="); got != 1 {
		t.Errorf("DUP defined %d times after Set, want 1", got)
	}
	val, _ := s.Get("OTHER")
	if val != "x" {
		t.Errorf("unrelated key OTHER = %q, want x", val)
	}
}

func TestSetDefault(t *testing.T) {
	s := newTestStore(t, "TZ='Etc/UTC'\n")

	wrote, err := s.SetDefault("TZ", "Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	if wrote {
		t.Error("SetDefault overwrote an existing key")
	}
	val, _ := s.Get("TZ")
	if val != "Etc/UTC" {
		t.Errorf("TZ = %q, want original value", val)
	}

	wrote, err = s.SetDefault("PUID", "1000")
	if err != nil {
		t.Fatal(err)
	}
	if !wrote {
		t.Error("SetDefault did not write a missing key")
	}
}

func TestUnset(t *testing.T) {
	s := newTestStore(t, "A='1'\nB='2'\nA='3'\n")
	if err := s.Unset("A"); err != nil {
		t.Fatal(err)
	}
	has, _ := s.Has("A")
	if has {
		t.Error("A still defined after Unset")
	}
	val, _ := s.Get("B")
	if val != "2" {
		t.Errorf("B = %q after Unset(A), want 2", val)
	}
}

func TestKeys(t *testing.T) {
	s := newTestStore(t, "B='2'\n# comment\nA='1'\n\nC='3'\n")
	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A", "B", "C"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}
}

func TestMergeMissing(t *testing.T) {
	dst := newTestStore(t, "VAR_A='TargetA'\nVAR_D='TargetD'\n")
	src := newTestStore(t, "VAR_A='SourceA'\nVAR_B='SourceB'\nVAR_C='SourceC'\n")

	added, err := dst.MergeMissing(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 2 {
		t.Errorf("added %d lines, want 2", len(added))
	}

	val, _ := dst.Get("VAR_A")
	if val != "TargetA" {
		t.Error("MergeMissing overwrote an existing key")
	}
	val, _ = dst.Get("VAR_B")
	if val != "SourceB" {
		t.Error("MergeMissing did not copy VAR_B")
	}
}

func TestMigrate(t *testing.T) {
	s := newTestStore(t, "OLD_KEY='keep me'\nEXISTING='stay'\nBOTH_OLD='old'\nBOTH_NEW='new'\n")

	applied, err := s.Migrate(map[string]string{
		"OLD_KEY":  "NEW_KEY",
		"MISSING":  "WHATEVER",
		"BOTH_OLD": "BOTH_NEW",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != 1 {
		t.Fatalf("applied = %v, want exactly the OLD_KEY rename", applied)
	}

	val, _ := s.Get("NEW_KEY")
	if val != "keep me" {
		t.Errorf("NEW_KEY = %q, value not preserved", val)
	}
	if has, _ := s.Has("OLD_KEY"); has {
		t.Error("OLD_KEY still present after migration")
	}
	// Target existed, so the source must be untouched.
	val, _ = s.Get("BOTH_OLD")
	if val != "old" {
		t.Error("migration with existing target modified the source")
	}
	val, _ = s.Get("BOTH_NEW")
	if val != "new" {
		t.Error("migration overwrote an existing target")
	}
}

func TestBackup(t *testing.T) {
	s := newTestStore(t, "KEY='value'\n")
	now := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	dst, err := s.Backup(now)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dst) != ".env.20250314.15.09.26" {
		t.Errorf("backup name = %q, want timestamped .env copy", filepath.Base(dst))
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "KEY='value'\n" {
		t.Errorf("backup content = %q", data)
	}
}

func TestBackupMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), ".env"))
	dst, err := s.Backup(time.Now())
	if err != nil {
		t.Fatalf("Backup of missing file should be a no-op, got %v", err)
	}
	if dst != "" {
		t.Errorf("Backup returned %q for a missing file", dst)
	}
}

func TestBackupPrunesOld(t *testing.T) {
	s := newTestStore(t, "KEY='value'\n")
	backupDir := filepath.Join(s.Dir(), backupDirName)
	if err := os.MkdirAll(backupDir, 0o700); err != nil {
		t.Fatal(err)
	}

	stale := filepath.Join(backupDir, ".env.20200101.00.00.00")
	if err := os.WriteFile(stale, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Backup(time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale backup was not pruned")
	}
}
