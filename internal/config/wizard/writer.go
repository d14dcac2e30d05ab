package wizard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/virtup/virtup/internal/config"
	"gopkg.in/yaml.v3"
)

// Function variable for dependency injection in tests.
var confirmOverwrite = defaultConfirmOverwrite

// WriteConfig writes the config to a file. The format is chosen by
// extension: .yaml/.yml produce YAML with a descriptive header comment,
// everything else pretty-printed JSON (JSON has no comment syntax).
func WriteConfig(cfg *config.Config, outputPath string) error {
	var out []byte

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".yaml", ".yml":
		yamlBytes, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}

		var sb strings.Builder
		sb.WriteString(generateHeader(outputPath))
		sb.WriteString("\n")
		sb.Write(yamlBytes)
		out = []byte(sb.String())
	default:
		jsonBytes, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		out = append(jsonBytes, '\n')
	}

	if err := os.WriteFile(outputPath, out, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// generateHeader creates the YAML file header comment.
func generateHeader(outputPath string) string {
	return fmt.Sprintf(`# virtup VM configuration
# Generated by: virtup init
# Generated at: %s
#
# Usage:
#   virtup apply -c %s
`, time.Now().Format(time.RFC3339), outputPath)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfirmOverwrite prompts the user to confirm overwriting an existing file.
func ConfirmOverwrite(path string) (bool, error) {
	return confirmOverwrite(path)
}

// defaultConfirmOverwrite is the default implementation that prompts via stdin.
func defaultConfirmOverwrite(path string) (bool, error) {
	fmt.Printf("\nFile already exists: %s\n", path)
	fmt.Print("Overwrite? (y/n): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
