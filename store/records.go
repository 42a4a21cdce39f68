package store

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"game_collection/models"

	"github.com/google/uuid"
)

const DocumentName = "games.json"

// RecordStore owns the collection document. Every operation reads the whole
// document, edits it in memory and writes it back. mu serializes those cycles
// within one process; other processes writing the same file are not excluded.
type RecordStore struct {
	mu     sync.Mutex
	path   string
	images *ImageStore
	now    func() time.Time
	newID  func() string
}

func NewRecordStore(path string, images *ImageStore) *RecordStore {
	return &RecordStore{
		path:   path,
		images: images,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

func (s *RecordStore) Path() string {
	return s.path
}

// Init creates the document directory and an empty document if none exists.
func (s *RecordStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return WriteDocument(s.path, []models.GameRecord{})
	} else if err != nil {
		return err
	}
	return nil
}

func (s *RecordStore) List() ([]models.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	games, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range games {
		games[i].RefreshImageURL()
	}
	return games, nil
}

func (s *RecordStore) Create(in models.GameInput) (models.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game := models.GameRecord{
		ID:         s.newID(),
		Category:   models.DefaultCategory,
		RecordDate: s.now().Format(time.RFC3339),
	}
	if in.Name != nil {
		game.Name = *in.Name
	}
	if in.Score != nil {
		game.Score = in.Score.Float()
	}
	if in.Category != nil {
		game.Category = *in.Category
	}
	if in.PlayTime != nil && *in.PlayTime != 0 {
		hours := in.PlayTime.Float()
		game.PlayTime = &hours
	}
	if in.RecordDate != nil {
		game.RecordDate = *in.RecordDate
	}
	if in.Comment != nil {
		game.Comment = *in.Comment
	}

	if in.ImageData != "" {
		// An explicit null name leaves the hint empty.
		hint := "Unknown"
		if in.Name != nil {
			hint = *in.Name
		} else if in.NamePresent {
			hint = ""
		}
		filename, err := s.images.Store(in.ImageData, hint)
		if err != nil {
			return models.GameRecord{}, err
		}
		game.ImagePath = &filename
	}
	game.RefreshImageURL()

	games, err := s.load()
	if err != nil {
		return models.GameRecord{}, err
	}
	games = append(games, game)
	if err := s.save(games); err != nil {
		return models.GameRecord{}, err
	}
	return game, nil
}

// Update merges in over the record with the given id. PlayTime is only
// replaced by a non-zero value.
func (s *RecordStore) Update(id string, in models.GameInput) (models.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	games, err := s.load()
	if err != nil {
		return models.GameRecord{}, err
	}
	idx := indexOf(games, id)
	if idx < 0 {
		return models.GameRecord{}, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	existing := games[idx]
	updated := existing
	updated.ID = id
	updated.Extra = maps.Clone(existing.Extra)

	if in.ImageData != "" {
		// The old file goes only once the new payload is known to be good.
		raw, ext, err := DecodeImage(in.ImageData)
		if err != nil {
			return models.GameRecord{}, err
		}
		if existing.ImagePath != nil && *existing.ImagePath != "" {
			if err := s.images.Delete(*existing.ImagePath); err != nil {
				return models.GameRecord{}, err
			}
		}
		hint := id
		if in.Name != nil && *in.Name != "" {
			hint = *in.Name
		} else if existing.Name != "" {
			hint = existing.Name
		}
		filename, err := s.images.Write(raw, ext, hint)
		if err != nil {
			return models.GameRecord{}, err
		}
		updated.ImagePath = &filename
		updated.Set("imagePath")
	}

	if in.Name != nil {
		updated.Name = *in.Name
		updated.Set("name")
	}
	if in.Score != nil {
		updated.Score = in.Score.Float()
		updated.Set("score")
	}
	if in.Category != nil {
		updated.Category = *in.Category
		updated.Set("category")
	}
	if in.PlayTime != nil && *in.PlayTime != 0 {
		hours := in.PlayTime.Float()
		updated.PlayTime = &hours
		updated.Set("playTime")
	}
	if in.RecordDate != nil {
		updated.RecordDate = *in.RecordDate
		updated.Set("recordDate")
	}
	if in.Comment != nil {
		updated.Comment = *in.Comment
		updated.Set("comment")
	}
	updated.RefreshImageURL()

	games[idx] = updated
	if err := s.save(games); err != nil {
		return models.GameRecord{}, err
	}
	return updated, nil
}

func (s *RecordStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	games, err := s.load()
	if err != nil {
		return err
	}
	idx := indexOf(games, id)
	if idx < 0 {
		return fmt.Errorf("game %s: %w", id, ErrNotFound)
	}

	if p := games[idx].ImagePath; p != nil && *p != "" {
		if err := s.images.Delete(*p); err != nil {
			return err
		}
	}

	games = append(games[:idx], games[idx+1:]...)
	return s.save(games)
}

func (s *RecordStore) load() ([]models.GameRecord, error) {
	games := []models.GameRecord{}
	if err := ReadDocument(s.path, &games); err != nil {
		return nil, err
	}
	if games == nil {
		games = []models.GameRecord{}
	}
	return games, nil
}

func (s *RecordStore) save(games []models.GameRecord) error {
	for i := range games {
		games[i].RefreshImageURL()
	}
	return WriteDocument(s.path, games)
}

func indexOf(games []models.GameRecord, id string) int {
	for i, g := range games {
		if g.ID == id {
			return i
		}
	}
	return -1
}
