package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/model"

	"github.com/shopspring/decimal"
)

// generateProfiles writes sample capability profiles for DEVICE_PROFILE.
// generic.json:        the built-in profile
// generic.json.gz:     the same, gzipped
// compact-utf8.json:   short text fields, utf-8, money only, no custom units
// Upload the directory under S3_PREFIX to serve the profiles from S3.
func main() {
	dataDir := "data/profiles"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	profiles := map[string]capability.Set{
		"generic.json":      capability.DefaultProfile(),
		"generic.json.gz":   capability.DefaultProfile(),
		"compact-utf8.json": compactProfile(),
	}

	for filename, set := range profiles {
		if err := set.Validate(); err != nil {
			log.Fatalf("Profile %s is invalid: %v", filename, err)
		}

		filePath := filepath.Join(dataDir, filename)
		if err := createProfileFile(filePath, set); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s for model %q (%d arguments)\n", filePath, set.Model, len(set.Arguments))
	}

	fmt.Println("\nSample capability profiles created successfully!")
	fmt.Println("\nUse one with:")
	fmt.Printf("  DEVICE_PROFILE=%s\n", filepath.Join(dataDir, "compact-utf8.json"))
}

func compactProfile() capability.Set {
	set := capability.DefaultProfile()
	set.Model = "compact"
	set.Charset = "utf-8"
	set.Units = []model.Unit{model.UnitWeight, model.UnitEmpty}
	set.PaymentMethods = []model.PaymentMethod{model.PaymentMoney}

	maxCash := decimal.RequireFromString("5000.00")
	set.Arguments[capability.ItemDescription] = capability.Capability{MaxLen: 20}
	set.Arguments[capability.PromotionalMessage] = capability.Capability{MaxLen: 120}
	set.Arguments[capability.RemoveCashValue] = capability.Capability{
		MinSize:  set.Arguments[capability.RemoveCashValue].MinSize,
		MaxSize:  &maxCash,
		Digits:   12,
		Decimals: 2,
	}
	return set
}

func createProfileFile(filePath string, set capability.Set) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var w io.Writer = file
	if strings.HasSuffix(filePath, ".gz") {
		gzipWriter := gzip.NewWriter(file)
		defer gzipWriter.Close()
		w = gzipWriter
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(set); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}
