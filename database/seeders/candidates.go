package seeders

import (
	"log"

	"voting-system/models/candidate"

	"gorm.io/gorm"
)

// SeedCandidates inserts the default candidate slate if the table is empty.
// Candidate order here fixes the insertion order used for tally tie-breaks.
func SeedCandidates(db *gorm.DB) {
	log.Printf("🔍 Checking candidates data integrity...")

	var count int64
	if err := db.Model(&candidate.Candidate{}).Count(&count).Error; err != nil {
		log.Printf("❌ Failed to count candidates: %v", err)
		return
	}
	if count > 0 {
		log.Printf("✅ Candidates already seeded (%d rows)", count)
		return
	}

	candidates := []candidate.Candidate{
		{Name: "Ali Rezaei"},
		{Name: "Hossein Hosseini"},
		{Name: "Mohammad Mohammadi"},
		{Name: "Maryam Heydari"},
	}

	if err := db.Create(&candidates).Error; err != nil {
		log.Printf("❌ Failed to seed candidates: %v", err)
		return
	}
	log.Printf("✅ Seeded %d candidates", len(candidates))
}
