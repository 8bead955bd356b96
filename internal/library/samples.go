package library

import (
	"time"

	"github.com/starford/eleph/internal/models"
)

// Samples returns the two starter documents written into an empty library.
// The second one is dated a day before now.
func Samples(now time.Time) []models.Note {
	return []models.Note{
		{
			ID:    "1",
			Title: "Getting Started with Markdown",
			Content: `# Getting Started with Markdown

Markdown is a lightweight markup language that you can use to add formatting elements to plaintext text documents.

## Why Use Markdown?

Markdown is portable, platform independent, and future proof.

- Easy to learn
- Fast to type
- Clean to read`,
			LastModified: now,
			Tags:         []string{},
		},
		{
			ID:    "2",
			Title: "Project Ideas",
			Content: `# Project Ideas

## Mobile Apps
- Note taking app with markdown support
- Habit tracker with insights

## Web Applications
- Portfolio website
- Recipe manager`,
			LastModified: now.Add(-24 * time.Hour),
			Tags:         []string{},
		},
	}
}
