package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const DefaultCategory = "OTHER"

// GameRecord is one entry of the collection document.
type GameRecord struct {
	ID         string   `gorm:"primaryKey" json:"id"`
	Name       string   `json:"name"`
	Score      float64  `json:"score"`
	Category   string   `json:"category"`
	PlayTime   *float64 `json:"playTime"`
	RecordDate string   `json:"recordDate"`
	Comment    string   `json:"comment"`
	ImagePath  *string  `json:"imagePath"`
	ImageURL   *string  `json:"imageUrl" gorm:"-"` // Derived from ImagePath, never read from input

	// Extra holds keys the record does not model, plus modelled keys whose
	// stored value could not be decoded, so rewrites carry them unchanged.
	Extra map[string]json.RawMessage `json:"-" gorm:"-"`
}

// Set marks key as replaced by the typed field so a stored raw value no
// longer overrides it.
func (g *GameRecord) Set(key string) {
	delete(g.Extra, key)
}

// RefreshImageURL recomputes ImageURL from ImagePath.
func (g *GameRecord) RefreshImageURL() {
	g.ImageURL = ImageURL(g.ImagePath)
}

// ImageURL returns the API path an image filename is served from, or nil.
func ImageURL(imagePath *string) *string {
	if imagePath == nil || *imagePath == "" {
		return nil
	}
	url := "/api/image/" + *imagePath
	return &url
}

// GameInput is the body of create and update requests. Nil fields were not
// supplied by the caller, or were null.
type GameInput struct {
	Name       *string `json:"name"`
	Score      *Number `json:"score"`
	Category   *string `json:"category"`
	PlayTime   *Number `json:"playTime"`
	RecordDate *string `json:"recordDate"`
	Comment    *string `json:"comment"`
	ImageData  string  `json:"imageData"`

	// NamePresent reports whether the body had a name key, even a null one.
	NamePresent bool `json:"-"`
}

func (in *GameInput) UnmarshalJSON(b []byte) error {
	type plain GameInput
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	_, p.NamePresent = keys["name"]
	*in = GameInput(p)
	return nil
}

// Number is a float that also decodes from a numeric string, which is how
// the browser form submits score and play time. An empty string is zero.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 {
	return float64(n)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&GameRecord{})
}
