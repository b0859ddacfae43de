package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ArthurCbn/photobot/internal/geo"
	"github.com/ArthurCbn/photobot/internal/group"
)

const sampleStore = `{
  "groups": [
    {"nom": "Rome", "id": "d1", "type": "date", "date_debut": "2023-06-01", "date_fin": "2023-06-03"},
    {"nom": "Paris", "id": "c1", "type": "circle", "latitude": 48.85, "longitude": 2.35, "rayon_km": 5},
    {"nom": "Zone", "id": "p1", "type": "polygone", "coordinates": [[2.0, 48.0], [2.1, 48.0], [2.1, 48.1]]},
    {"nom": "Futur", "id": "u1", "type": "lieu"}
  ]
}`

// writeFile는 테스트 코드 동작을 검증하거나 보조합니다.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// TestLoad_AllKinds는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLoad_AllKinds(t *testing.T) {
	// 저장된 순서대로 모든 종류의 그룹을 읽어야 한다.
	path := filepath.Join(t.TempDir(), "groups.json")
	writeFile(t, path, sampleStore)

	groups, err := Open(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(groups) != 4 {
		t.Fatalf("expected 4 groups, got %d", len(groups))
	}

	d, ok := groups[0].(group.DateGroup)
	if !ok || d.Name != "Rome" || d.Start != "2023-06-01" {
		t.Fatalf("unexpected date group: %#v", groups[0])
	}
	c, ok := groups[1].(group.CircleGroup)
	if !ok || c.RadiusKm != 5 || c.Center.Lat != 48.85 {
		t.Fatalf("unexpected circle group: %#v", groups[1])
	}
	p, ok := groups[2].(group.PolygonGroup)
	if !ok || len(p.Ring) != 3 {
		t.Fatalf("unexpected polygon group: %#v", groups[2])
	}
	u, ok := groups[3].(group.UnknownGroup)
	if !ok || u.RawKind != "lieu" {
		t.Fatalf("expected unknown group, got %#v", groups[3])
	}
}

// TestLoad_MissingFile는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLoad_MissingFile(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "missing.json"))

	_, err := s.Load()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	groups, err := s.LoadOrEmpty()
	if err != nil || len(groups) != 0 {
		t.Fatalf("expected empty result, got %v, %v", groups, err)
	}
}

// TestLoad_Malformed는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"syntax.json":  `{"groups": [`,
		"circle.json":  `{"groups": [{"nom": "x", "id": "c", "type": "circle", "latitude": 1}]}`,
		"dates.json":   `{"groups": [{"nom": "x", "id": "d", "type": "date", "date_debut": "2023-06-05", "date_fin": "2023-06-01"}]}`,
		"polygon.json": `{"groups": [{"nom": "x", "id": "p", "type": "polygone", "coordinates": [[0, 0]]}]}`,
	}

	for name, content := range cases {
		path := filepath.Join(dir, name)
		writeFile(t, path, content)
		_, err := Open(path).Load()
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if errors.Is(err, ErrNotFound) {
			t.Errorf("%s: malformed content must not be reported as missing", name)
		}
	}
}

// TestAppend_RoundTrip는 테스트 코드 동작을 검증하거나 보조합니다.
func TestAppend_RoundTrip(t *testing.T) {
	// 새 파일에 저장한 그룹은 다시 읽었을 때 같은 값이어야 한다.
	path := filepath.Join(t.TempDir(), "sub", "groups.json")
	s := Open(path)

	d, _ := group.NewDateGroup("Rome", "", "2023-06-01", "2023-06-03")
	c, _ := group.NewCircleGroup("Paris", "", 48.85, 2.35, 5)
	p, _ := group.NewPolygonGroup("", "", geo.Ring{{2, 48}, {2.1, 48}, {2.1, 48.1}})

	added, err := s.Append(d, c, p)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if len(added) != 3 {
		t.Fatalf("expected 3 added, got %d", len(added))
	}

	groups, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Ident().ID != d.ID || groups[1].Ident().ID != c.ID || groups[2].Ident().ID != p.ID {
		t.Fatal("expected ids to survive round trip")
	}
	if got := groups[1].(group.CircleGroup); got.RadiusKm != 5 || got.Center.Lon != 2.35 {
		t.Fatalf("unexpected circle after round trip: %#v", got)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file should not remain after write")
	}
}

// TestAppend_MergesOnlyNewIDs는 테스트 코드 동작을 검증하거나 보조합니다.
func TestAppend_MergesOnlyNewIDs(t *testing.T) {
	// 이미 있는 id와 같은 배치 안의 중복 id는 추가되지 않아야 한다.
	path := filepath.Join(t.TempDir(), "groups.json")
	writeFile(t, path, sampleStore)
	s := Open(path)

	dup, _ := group.NewDateGroup("Autre", "d1", "2024-01-01", "2024-01-02")
	fresh, _ := group.NewCircleGroup("Lyon", "", 45.76, 4.83, 3)

	added, err := s.Append(dup, fresh, fresh)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if len(added) != 1 || added[0].Ident().ID != fresh.ID {
		t.Fatalf("expected only the fresh group, got %v", added)
	}

	groups, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(groups) != 5 {
		t.Fatalf("expected 5 groups, got %d", len(groups))
	}
	if _, ok := groups[3].(group.UnknownGroup); !ok {
		t.Fatal("expected unknown record to be preserved")
	}

	added, err = s.Append(dup)
	if err != nil || len(added) != 0 {
		t.Fatalf("expected nothing added, got %v, %v", added, err)
	}
}

// TestLoad_CSV는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dates.csv")
	writeFile(t, path, "nom,date_debut,date_fin\nRome,2023-06-01,2023-06-03\nNoel,2023-12-24 00:00:00,2023-12-26 00:00:00\n")

	s := Open(path)
	groups, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	noel := groups[1].(group.DateGroup)
	if noel.Start != "2023-12-24" || noel.ID == "" {
		t.Fatalf("unexpected CSV group: %#v", noel)
	}

	c, _ := group.NewCircleGroup("x", "", 0, 0, 1)
	if _, err := s.Append(c); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

// TestLoad_CSVMissingColumn는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLoad_CSVMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dates.csv")
	writeFile(t, path, "nom,date_debut\nRome,2023-06-01\n")

	_, err := Open(path).Load()
	if err == nil || !strings.Contains(err.Error(), "date_fin") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}
