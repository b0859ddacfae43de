package planner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ArthurCbn/photobot/internal/group"
	"github.com/ArthurCbn/photobot/pkg/types"
)

// captured는 테스트 코드 동작을 검증하거나 보조합니다.
func captured(year int, month time.Month, day int) types.MediaRecord {
	t := time.Date(year, month, day, 15, 30, 0, 0, time.UTC)
	return types.MediaRecord{CapturedAt: &t}
}

// TestPlanner_Plan_DateGroup는 테스트 코드 동작을 검증하거나 보조합니다.
func TestPlanner_Plan_DateGroup(t *testing.T) {
	// 날짜 그룹은 연도/그룹명 구조이며 월 폴더가 없어야 한다.
	p := New("/dest", "", "")
	g, _ := group.NewDateGroup("Vacances", "", "2023-06-01", "2023-06-03")
	entry := types.FileEntry{Path: "/source/photo.jpg", Name: "photo.jpg"}

	task := p.Plan(entry, captured(2023, 6, 2), g)

	expectedDir := filepath.Join("/dest", "2023", "Vacances")
	if task.DestDir != expectedDir {
		t.Errorf("expected %s, got %s", expectedDir, task.DestDir)
	}
	if task.DestPath != filepath.Join(expectedDir, "photo.jpg") {
		t.Errorf("unexpected dest path: %s", task.DestPath)
	}
	if task.GroupID != g.ID || task.GroupKind != "date" || !task.Matched() {
		t.Errorf("unexpected group fields: %+v", task)
	}
	if task.Status != types.TaskStatusPending {
		t.Errorf("expected pending task, got %s", task.Status)
	}
}

// TestPlanner_Plan_AreaGroupAddsMonth는 테스트 코드 동작을 검증하거나 보조합니다.
func TestPlanner_Plan_AreaGroupAddsMonth(t *testing.T) {
	p := New("/dest", "", "")
	g, _ := group.NewCircleGroup("Paris", "", 48.85, 2.35, 5)
	entry := types.FileEntry{Path: "/source/photo.jpg", Name: "photo.jpg"}

	task := p.Plan(entry, captured(2024, 3, 9), g)
	if want := filepath.Join("/dest", "2024", "Paris", "03"); task.DestDir != want {
		t.Fatalf("expected %s, got %s", want, task.DestDir)
	}

	// 시간이 없으면 월 폴더 없이 unknown-year 아래에 둔다.
	task = p.Plan(entry, types.MediaRecord{}, g)
	if want := filepath.Join("/dest", "unknown-year", "Paris"); task.DestDir != want {
		t.Fatalf("expected %s, got %s", want, task.DestDir)
	}
}

// TestPlanner_Plan_Unmatched는 테스트 코드 동작을 검증하거나 보조합니다.
func TestPlanner_Plan_Unmatched(t *testing.T) {
	p := New("/dest", "", "")
	entry := types.FileEntry{Path: "/source/photo.jpg", Name: "photo.jpg"}

	task := p.Plan(entry, captured(2022, 11, 1), nil)
	if want := filepath.Join("/dest", "2022", "z_unsorted", "11"); task.DestDir != want {
		t.Fatalf("expected %s, got %s", want, task.DestDir)
	}
	if task.Matched() {
		t.Fatal("expected unmatched task")
	}
}

// TestPlanner_Plan_NoMetadataGoesToUnknownYear는 테스트 코드 동작을 검증하거나 보조합니다.
func TestPlanner_Plan_NoMetadataGoesToUnknownYear(t *testing.T) {
	// GPS와 시간이 모두 없는 사진은 unknown-year/대체 폴더로 가야 한다.
	p := New("/dest", "", "")
	entry := types.FileEntry{Path: "/source/photo.jpg", Name: "photo.jpg"}

	task := p.Plan(entry, types.MediaRecord{Errors: []string{"no EXIF data"}}, nil)

	expectedDir := filepath.Join("/dest", "unknown-year", "z_unsorted")
	if task.DestDir != expectedDir {
		t.Errorf("expected %s, got %s", expectedDir, task.DestDir)
	}
}

// TestPlanner_Plan_CustomBuckets는 테스트 코드 동작을 검증하거나 보조합니다.
func TestPlanner_Plan_CustomBuckets(t *testing.T) {
	p := New("/dest", "z_autre", "inconnue")
	entry := types.FileEntry{Path: "/source/a.mp4", Name: "a.mp4"}

	task := p.Plan(entry, types.MediaRecord{}, nil)
	if want := filepath.Join("/dest", "inconnue", "z_autre"); task.DestDir != want {
		t.Fatalf("expected %s, got %s", want, task.DestDir)
	}
}

// TestPlanner_Plan_UnnamedGroupUsesID는 테스트 코드 동작을 검증하거나 보조합니다.
func TestPlanner_Plan_UnnamedGroupUsesID(t *testing.T) {
	p := New("/dest", "", "")
	g, _ := group.NewCircleGroup("", "abc", 1, 1, 1)
	entry := types.FileEntry{Path: "/source/a.jpg", Name: "a.jpg"}

	task := p.Plan(entry, types.MediaRecord{}, g)
	if want := filepath.Join("/dest", "unknown-year", "Groupe_abc"); task.DestDir != want {
		t.Fatalf("expected %s, got %s", want, task.DestDir)
	}
	if task.GroupName != "Groupe_abc" {
		t.Fatalf("unexpected group name: %s", task.GroupName)
	}
}

// TestPlanner_Plan_DoesNotCreateDirectories는 테스트 코드 동작을 검증하거나 보조합니다.
func TestPlanner_Plan_DoesNotCreateDirectories(t *testing.T) {
	dest := t.TempDir()
	p := New(dest, "", "")
	entry := types.FileEntry{Path: "/source/a.jpg", Name: "a.jpg"}

	task := p.Plan(entry, captured(2020, 1, 1), nil)
	if _, err := os.Stat(task.DestDir); !os.IsNotExist(err) {
		t.Fatalf("expected planner not to create %s", task.DestDir)
	}
}

// TestSanitizeName는 테스트 코드 동작을 검증하거나 보조합니다.
func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"Rome":          "Rome",
		"Paris/Lyon":    "Paris_Lyon",
		`a\b:c`:         "a_b_c",
		"..":            "",
		"  Été 2023 . ": "Été 2023",
		"tab\there":     "tabhere",
	}
	for in, want := range tests {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestGroupDir_FallsBackWhenNameUnusable는 테스트 코드 동작을 검증하거나 보조합니다.
func TestGroupDir_FallsBackWhenNameUnusable(t *testing.T) {
	g, _ := group.NewDateGroup("..", "xyz", "2023-01-01", "2023-01-02")
	if got := GroupDir(g); got != "Groupe_xyz" {
		t.Fatalf("expected fallback name, got %s", got)
	}
}

// TestPlanner_Plan_UsesLocalWallClock는 테스트 코드 동작을 검증하거나 보조합니다.
func TestPlanner_Plan_UsesLocalWallClock(t *testing.T) {
	// +02:00 기준 1월 1일 00:30 촬영분은 UTC로 전년도지만 2023/01 폴더로 가야 한다.
	p := New("/dest", "", "")
	at := time.Date(2023, 1, 1, 0, 30, 0, 0, time.FixedZone("", 2*3600))
	entry := types.FileEntry{Path: "/source/clip.mp4", Name: "clip.mp4"}

	task := p.Plan(entry, types.MediaRecord{CapturedAt: &at}, nil)
	if want := filepath.Join("/dest", "2023", "z_unsorted", "01"); task.DestDir != want {
		t.Fatalf("expected %s, got %s", want, task.DestDir)
	}
}
