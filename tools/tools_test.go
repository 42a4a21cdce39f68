package tools

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"game_collection/db"
	"game_collection/models"

	"go.uber.org/zap/zaptest"
	"gorm.io/gorm/logger"
)

func newTestTools(t *testing.T) (*Tools, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	tl, err := New(filepath.Join(t.TempDir(), "data"), &out, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	tl.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 15, 0, time.UTC) }
	return tl, &out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, buf.String())
}

func TestCleanupRemovesOnlyOrphans(t *testing.T) {
	tl, _ := newTestTools(t)
	writeFile(t, tl.jsonFile, `[{"id":"1","imagePath":"cover.png"},{"id":"2","imagePath":"data:image/png;base64,AAAA"},{"id":"3","imagePath":null}]`)
	writeFile(t, filepath.Join(tl.imagesDir, "cover.png"), "keep")
	writeFile(t, filepath.Join(tl.imagesDir, "orphan.png"), "drop")

	removed, err := tl.Cleanup()
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(filepath.Join(tl.imagesDir, "cover.png")); err != nil {
		t.Error("cover.png should be kept")
	}
	if _, err := os.Stat(filepath.Join(tl.imagesDir, "orphan.png")); !os.IsNotExist(err) {
		t.Error("orphan.png should be removed")
	}
}

func TestCleanupWithoutDocument(t *testing.T) {
	tl, out := newTestTools(t)
	writeFile(t, filepath.Join(tl.imagesDir, "orphan.png"), "x")
	if _, err := tl.Cleanup(); !errors.Is(err, ErrNoDocument) {
		t.Errorf("error = %v, want ErrNoDocument", err)
	}
	if _, err := os.Stat(filepath.Join(tl.imagesDir, "orphan.png")); err != nil {
		t.Error("nothing should be removed without a document")
	}
	if !strings.Contains(out.String(), "No game data file found") {
		t.Errorf("output = %q", out)
	}
}

func TestExportCopiesVerbatim(t *testing.T) {
	tl, _ := newTestTools(t)
	content := "[\n  {\"id\": \"x\", \"name\": \"游戏\"}\n]\n"
	writeFile(t, tl.jsonFile, content)

	dst := filepath.Join(t.TempDir(), "out.json")
	path, err := tl.Export(dst)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != content {
		t.Errorf("export differs: %q", got)
	}
}

func TestExportDefaultName(t *testing.T) {
	tl, _ := newTestTools(t)
	writeFile(t, tl.jsonFile, "[]")
	t.Chdir(t.TempDir())

	path, err := tl.Export("")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if path != "game_collection_backup_20240601_093015.json" {
		t.Errorf("path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("export file missing")
	}
}

func TestExportWithoutDocument(t *testing.T) {
	tl, _ := newTestTools(t)
	if _, err := tl.Export(filepath.Join(t.TempDir(), "out.json")); !errors.Is(err, ErrNoDocument) {
		t.Errorf("error = %v, want ErrNoDocument", err)
	}
}

func TestImportBacksUpAndReplaces(t *testing.T) {
	tl, _ := newTestTools(t)
	old := `[{"id":"old"}]`
	writeFile(t, tl.jsonFile, old)
	input := filepath.Join(t.TempDir(), "in.json")
	writeFile(t, input, `[{"id":"a","extra":{"nested":true}},{"id":"a"}]`)

	if err := tl.Import(input); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	backup, err := os.ReadFile(filepath.Join(tl.dataDir, "games_backup_20240601_093015.json"))
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != old {
		t.Errorf("backup = %q", backup)
	}

	var imported []map[string]any
	raw, _ := os.ReadFile(tl.jsonFile)
	if err := json.Unmarshal(raw, &imported); err != nil {
		t.Fatal(err)
	}
	if len(imported) != 2 || imported[0]["extra"] == nil {
		t.Errorf("imported document = %s", raw)
	}
}

func TestImportRejectsNonArray(t *testing.T) {
	tl, _ := newTestTools(t)
	writeFile(t, tl.jsonFile, `[{"id":"keep"}]`)
	for _, content := range []string{`{"id":"x"}`, `null`, `"str"`, `not json`} {
		input := filepath.Join(t.TempDir(), "in.json")
		writeFile(t, input, content)
		if err := tl.Import(input); err == nil {
			t.Errorf("Import(%s) expected failure", content)
		}
	}
	raw, _ := os.ReadFile(tl.jsonFile)
	if string(raw) != `[{"id":"keep"}]` {
		t.Errorf("document changed: %s", raw)
	}
	entries, _ := os.ReadDir(tl.dataDir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "games_backup_") {
			t.Errorf("no backup expected on failed import, found %s", e.Name())
		}
	}
}

func TestCreateSampleAndStats(t *testing.T) {
	tl, _ := newTestTools(t)
	if err := tl.CreateSample(); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	s, err := tl.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if s.Total != 3 {
		t.Errorf("Total = %d", s.Total)
	}
	if s.TotalPlayTime != 66 {
		t.Errorf("TotalPlayTime = %v, want 66", s.TotalPlayTime)
	}
	if s.Categories["RPG"] != 1 || s.Categories["ACT"] != 1 || s.Categories["ADV"] != 1 {
		t.Errorf("Categories = %v", s.Categories)
	}
	if s.Years[2024] != 3 {
		t.Errorf("Years = %v", s.Years)
	}
}

func TestSummarize(t *testing.T) {
	hours := 10.0
	games := []models.GameRecord{
		{Score: 8, Category: "RPG", PlayTime: &hours, RecordDate: "2023-04-01T10:00:00Z"},
		{Score: 6, Category: "RPG", RecordDate: "2024-01-15T20:30:00.123456"},
		{Score: 10, RecordDate: "yesterday"},
	}
	s := Summarize(games)
	if s.Total != 3 || s.TotalPlayTime != 10 || s.AverageScore != 8 {
		t.Errorf("unexpected totals %+v", s)
	}
	if s.Categories["RPG"] != 2 || s.Categories["OTHER"] != 1 {
		t.Errorf("Categories = %v", s.Categories)
	}
	if len(s.Years) != 2 || s.Years[2023] != 1 || s.Years[2024] != 1 {
		t.Errorf("Years = %v", s.Years)
	}
}

func TestPrintStatisticsOrdering(t *testing.T) {
	var buf bytes.Buffer
	PrintStatistics(&buf, Statistics{
		Total:      3,
		Categories: map[string]int{"RPG": 1, "ACT": 2},
		Years:      map[int]int{2022: 1, 2024: 2},
	})
	out := buf.String()
	if strings.Index(out, "ACT") > strings.Index(out, "RPG") {
		t.Error("categories should be in name order")
	}
	if strings.Index(out, "2024") > strings.Index(out, "2022") {
		t.Error("years should be newest first")
	}

	buf.Reset()
	PrintStatistics(&buf, Statistics{})
	if !strings.Contains(buf.String(), "No game records") {
		t.Errorf("empty report = %q", buf.String())
	}
}

func TestOptimize(t *testing.T) {
	tl, _ := newTestTools(t)
	src := filepath.Join(t.TempDir(), "src")
	writePNG(t, filepath.Join(src, "big.png"), 1600, 1200, color.NRGBA{R: 255, A: 0})
	writePNG(t, filepath.Join(src, "nested", "small.PNG"), 100, 50, color.NRGBA{B: 255, A: 255})
	writeFile(t, filepath.Join(src, "broken.jpg"), "not an image")
	writeFile(t, filepath.Join(src, "notes.txt"), "ignored")

	processed, err := tl.Optimize(src, "")
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if processed != 2 {
		t.Errorf("processed = %d, want 2", processed)
	}

	tests := []struct {
		name string
		w, h int
	}{
		{"big_optimized.jpg", 800, 600},
		{"small_optimized.jpg", 100, 50},
	}
	for _, tt := range tests {
		f, err := os.Open(filepath.Join(tl.imagesDir, tt.name))
		if err != nil {
			t.Fatalf("missing %s: %v", tt.name, err)
		}
		img, err := jpeg.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", tt.name, err)
		}
		if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
			t.Errorf("%s size = %dx%d, want %dx%d", tt.name, b.Dx(), b.Dy(), tt.w, tt.h)
		}
	}

	// Fully transparent pixels become white.
	f, _ := os.Open(filepath.Join(tl.imagesDir, "big_optimized.jpg"))
	img, _ := jpeg.Decode(f)
	f.Close()
	r, g, b, _ := img.At(400, 300).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected white background, got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestOptimizeKeepsAspectRatio(t *testing.T) {
	tl, _ := newTestTools(t)
	src := filepath.Join(t.TempDir(), "src")
	writePNG(t, filepath.Join(src, "tall.png"), 300, 1200, color.White)
	target := filepath.Join(t.TempDir(), "out")

	if _, err := tl.Optimize(src, target); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	f, err := os.Open(filepath.Join(target, "tall_optimized.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 150 || cfg.Height != 600 {
		t.Errorf("size = %dx%d, want 150x600", cfg.Width, cfg.Height)
	}
}

func TestOptimizeMissingSource(t *testing.T) {
	tl, _ := newTestTools(t)
	if _, err := tl.Optimize(filepath.Join(t.TempDir(), "nope"), ""); err == nil {
		t.Error("expected error for missing source directory")
	}
}

func TestBackupArchive(t *testing.T) {
	tl, _ := newTestTools(t)
	writeFile(t, tl.jsonFile, `[{"id":"1","imagePath":"a.png"}]`)
	writeFile(t, filepath.Join(tl.imagesDir, "a.png"), "A")
	writeFile(t, filepath.Join(tl.imagesDir, "b.jpg"), "B")

	path, err := tl.Backup(filepath.Join(t.TempDir(), "backup.zip"))
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	want := []string{"games.json", "images/a.png", "images/b.jpg"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("entries = %v, want %v", names, want)
	}
}

func TestExportSQLite(t *testing.T) {
	tl, _ := newTestTools(t)
	writeFile(t, tl.jsonFile, `[
  {"id":"1","name":"Celeste","score":9,"category":"ACT","playTime":20,"recordDate":"2024-01-01","comment":"","imagePath":null},
  {"id":"2","name":"Hades","score":9.5,"category":"ACT","playTime":null,"recordDate":"2024-02-01","comment":"","imagePath":"h.png"},
  {"id":"2","name":"Hades II","score":9.7,"category":"ACT","playTime":null,"recordDate":"2024-03-01","comment":"","imagePath":"h.png"}
]`)
	out := filepath.Join(t.TempDir(), "snap.db")

	if _, err := tl.ExportSQLite(out); err != nil {
		t.Fatalf("ExportSQLite failed: %v", err)
	}

	conn, err := db.Open(out, logger.Silent)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close(conn)

	var rows []models.GameRecord
	if err := conn.Order("id").Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1].Name != "Hades II" {
		t.Errorf("duplicate id should keep the last record, got %q", rows[1].Name)
	}
	if rows[0].PlayTime == nil || *rows[0].PlayTime != 20 {
		t.Errorf("PlayTime = %v", rows[0].PlayTime)
	}
}
