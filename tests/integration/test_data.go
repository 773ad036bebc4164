package integration

import (
	"fmt"
	"time"

	"github.com/BradenHooton/classdesk/internal/models"
)

// SeedAnnouncements builds n announcements alternating between two types
func SeedAnnouncements(n int) []models.Announcement {
	types := []string{"instructional", "event"}
	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	items := make([]models.Announcement, n)
	for i := range items {
		items[i] = models.Announcement{
			ID:        fmt.Sprintf("a%02d", i+1),
			Title:     fmt.Sprintf("Announcement %d", i+1),
			Type:      types[i%len(types)],
			Audience:  "all",
			Author:    &models.Author{ID: "t1", Name: "Achieng", Role: models.RoleTeacher},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return items
}
