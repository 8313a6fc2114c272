package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/quasar/pkg/config"
)

// ExampleNew demonstrates creating a configuration with default values.
func ExampleNew() {
	cfg := config.New()

	// The configuration works without a config file
	fmt.Printf("Log Level: %s\n", cfg.Logging.Level)
	fmt.Printf("Encoding: %s\n", cfg.Logging.Encoding)
	fmt.Printf("Key Limit: %d\n", cfg.Load.Limit)

	// Output:
	// Log Level: info
	// Encoding: json
	// Key Limit: 4294967295
}

// ExampleConfig_Validate shows validating a configuration before use.
func ExampleConfig_Validate() {
	cfg := config.New()

	// Adjust values for this run
	cfg.Logging.Level = "debug"
	cfg.Load.Index = "id"
	cfg.Load.Update = true

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	fmt.Println("configuration is valid")

	// Output:
	// configuration is valid
}

// ExampleLoadFile demonstrates the layering behavior: a config file only
// needs the keys it changes.
func ExampleLoadFile() {
	// An empty path returns plain defaults. With a path, the file's keys
	// are layered over these defaults:
	//
	//	cfg, err := config.LoadFile("quasar.yaml")
	cfg, err := config.LoadFile("")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Format: %q (detected from extension when empty)\n", cfg.Source.Format)
	fmt.Printf("Delimiter: %q\n", cfg.Source.Delimiter())

	// Output:
	// Format: "" (detected from extension when empty)
	// Delimiter: ','
}
