package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"game_collection/models"
	"game_collection/store"
)

// CreateSample replaces the document with three example records.
func (t *Tools) CreateSample() error {
	if err := store.WriteDocument(t.jsonFile, sampleGames()); err != nil {
		return fmt.Errorf("write sample data: %w", err)
	}
	t.printf("Sample data created: %s", t.jsonFile)
	return nil
}

func sampleGames() []models.GameRecord {
	hours := func(h float64) *float64 { return &h }
	return []models.GameRecord{
		{
			ID:         "sample1",
			Name:       "示例游戏 1",
			Score:      8.5,
			Category:   "RPG",
			PlayTime:   hours(45.5),
			RecordDate: "2024-01-15T20:30:00",
			Comment:    "这是一款非常好玩的RPG游戏，剧情丰富，画面精美。",
		},
		{
			ID:         "sample2",
			Name:       "示例游戏 2",
			Score:      7.2,
			Category:   "ACT",
			PlayTime:   hours(12.0),
			RecordDate: "2024-02-10T14:15:00",
			Comment:    "动作游戏，操作手感不错，但剧情略显薄弱。",
		},
		{
			ID:         "sample3",
			Name:       "示例游戏 3",
			Score:      9.1,
			Category:   "ADV",
			PlayTime:   hours(8.5),
			RecordDate: "2024-03-05T16:45:00",
			Comment:    "优秀的冒险游戏，故事引人入胜，推荐！",
		},
	}
}

// Export copies the document byte for byte to output, or to a timestamped
// file in the working directory when output is empty. It returns the path
// written, or ErrNoDocument.
func (t *Tools) Export(output string) (string, error) {
	if !t.documentExists() {
		t.printf("No game data file found")
		return "", ErrNoDocument
	}
	if output == "" {
		output = fmt.Sprintf("game_collection_backup_%s.json", t.now().Format(timestampLayout))
	}
	if err := copyFile(t.jsonFile, output); err != nil {
		return "", fmt.Errorf("export data: %w", err)
	}
	t.printf("Data exported: %s", output)
	return output, nil
}

// Import replaces the document with the JSON array in input. The current
// document, if any, is first copied to a timestamped backup inside the data
// directory. Records are written as given, without validation.
func (t *Tools) Import(input string) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}
	if _, ok := parsed.([]any); !ok {
		return fmt.Errorf("%s: data must be an array of game records", input)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}

	if t.documentExists() {
		backup := fmt.Sprintf("games_backup_%s.json", t.now().Format(timestampLayout))
		if err := copyFile(t.jsonFile, filepath.Join(t.dataDir, backup)); err != nil {
			return fmt.Errorf("back up current data: %w", err)
		}
		t.printf("Existing data backed up: %s", backup)
	}

	if err := store.WriteDocument(t.jsonFile, records); err != nil {
		return fmt.Errorf("write imported data: %w", err)
	}
	t.printf("Data imported, %d records", len(records))
	return nil
}
