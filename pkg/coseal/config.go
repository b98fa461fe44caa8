package coseal

import (
	"fmt"
	"os"
)

type Config struct {
	// Directory where the output files are stored after composition
	OutputDir string
	// Directory where the temporary files are stored during composition, deleted afterwards
	TmpDir string
	// Pattern for the human-readable verification URL, receives the QR payload
	VerifyURLPattern string
}

func NewDefaultConfig(verifyURLPattern string) *Config {
	cfg := Config{
		OutputDir:        fmt.Sprintf("%s/coseal/compose/output", os.TempDir()),
		TmpDir:           fmt.Sprintf("%s/coseal/compose/tmp", os.TempDir()),
		VerifyURLPattern: verifyURLPattern,
	}

	// Create the directories if they do not exist
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
	}
	if err := os.MkdirAll(cfg.TmpDir, 0755); err != nil {
		fmt.Printf("Error creating tmp directory: %v\n", err)
	}

	return &cfg
}
