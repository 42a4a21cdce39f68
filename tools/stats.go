package tools

import (
	"fmt"
	"io"
	"sort"
	"time"

	"game_collection/models"
	"game_collection/store"
)

var recordDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type Statistics struct {
	Total         int
	TotalPlayTime float64
	AverageScore  float64
	Categories    map[string]int
	Years         map[int]int
}

// Stats summarizes the document. Records whose recordDate does not parse are
// left out of the year histogram only.
func (t *Tools) Stats() (Statistics, error) {
	if !t.documentExists() {
		return Statistics{}, ErrNoDocument
	}
	var games []models.GameRecord
	if err := store.ReadDocument(t.jsonFile, &games); err != nil {
		return Statistics{}, err
	}
	return Summarize(games), nil
}

func Summarize(games []models.GameRecord) Statistics {
	s := Statistics{
		Total:      len(games),
		Categories: make(map[string]int),
		Years:      make(map[int]int),
	}
	if len(games) == 0 {
		return s
	}

	var scoreSum float64
	for _, g := range games {
		if g.PlayTime != nil {
			s.TotalPlayTime += *g.PlayTime
		}
		scoreSum += g.Score

		category := g.Category
		if category == "" {
			category = models.DefaultCategory
		}
		s.Categories[category]++

		if year, ok := recordYear(g.RecordDate); ok {
			s.Years[year]++
		}
	}
	s.AverageScore = scoreSum / float64(len(games))
	return s
}

func recordYear(date string) (int, bool) {
	for _, layout := range recordDateLayouts {
		if ts, err := time.Parse(layout, date); err == nil {
			return ts.Year(), true
		}
	}
	return 0, false
}

// PrintStatistics writes s as a report: categories in name order, years
// newest first.
func PrintStatistics(w io.Writer, s Statistics) {
	if s.Total == 0 {
		fmt.Fprintln(w, "No game records")
		return
	}

	fmt.Fprintln(w, "\n=== Game Collection Statistics ===")
	fmt.Fprintf(w, "Total games: %d\n", s.Total)
	fmt.Fprintf(w, "Total play time: %.1f hours\n", s.TotalPlayTime)
	fmt.Fprintf(w, "Average score: %.1f\n", s.AverageScore)

	fmt.Fprintln(w, "\nBy category:")
	categories := make([]string, 0, len(s.Categories))
	for c := range s.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(w, "  %s: %d games\n", c, s.Categories[c])
	}

	fmt.Fprintln(w, "\nBy year:")
	years := make([]int, 0, len(s.Years))
	for y := range s.Years {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	for _, y := range years {
		fmt.Fprintf(w, "  %d: %d games\n", y, s.Years[y])
	}
}
