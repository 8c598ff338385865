// Package secrets resolves credentials such as the Gemini api key.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/spigell/outreach-crafter/internal/utils"
)

// Source lists the places a secret may come from, in order of precedence:
// File, then Value, then the Env variable.
type Source struct {
	// Name is used in error messages.
	Name  string
	File  string
	Value string
	Env   string
}

// Load returns the trimmed secret from the first configured place.
func Load(src Source) (string, error) {
	name := utils.FirstNonEmpty(strings.TrimSpace(src.Name), "secret")

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	var env string
	if src.Env != "" {
		env = os.Getenv(src.Env)
	}

	secret := strings.TrimSpace(utils.FirstNonEmpty(src.Value, env))
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}
	return secret, nil
}

// Fingerprint renders a secret safe for logs: the last four characters
// only.
func Fingerprint(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
