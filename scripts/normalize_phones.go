package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/AlexTLDR/eventdeck/internal/database"
	"github.com/AlexTLDR/eventdeck/internal/utils"
)

// Re-normalizes the phone numbers stored in the confirmation ledger to E.164.
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "sqlite://./eventdeck.db"
	}
	region := strings.ToUpper(os.Getenv("PHONE_REGION"))
	if region == "" {
		region = "IN"
	}

	db, err := database.New(dbURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	confirmations, err := db.ListConfirmations("")
	if err != nil {
		log.Fatalf("Failed to query confirmations: %v", err)
	}

	fmt.Printf("Found %d confirmations to process\n", len(confirmations))

	updated := 0
	failed := 0
	skipped := 0
	for _, c := range confirmations {
		if strings.TrimSpace(c.Phone) == "" {
			skipped++
			continue
		}

		normalized, err := utils.NormalizePhoneNumber(c.Phone, region)
		if err != nil {
			log.Printf("Failed to normalize phone %q (ID: %s): %v", c.Phone, c.ID, err)
			failed++
			continue
		}

		// Only update if the phone number changed
		if normalized != c.Phone {
			if err := db.UpdatePhone(c.ID, normalized); err != nil {
				log.Printf("Failed to update phone for ID %s: %v", c.ID, err)
				failed++
				continue
			}
			fmt.Printf("Updated ID %s: %q -> %q\n", c.ID, c.Phone, normalized)
			updated++
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total: %d\n", len(confirmations))
	fmt.Printf("  Updated: %d\n", updated)
	fmt.Printf("  Failed: %d\n", failed)
	fmt.Printf("  No phone: %d\n", skipped)
	fmt.Printf("  Unchanged: %d\n", len(confirmations)-updated-failed-skipped)
}
