package agave

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/agavesunset/agave/pkg/domain"
)

// Fingerprint identifies an execution: the class plus its inputs and hidden
// context. Map keys are encoded in sorted order, so equal requests share a key.
func Fingerprint(class string, req domain.Request) (string, error) {
	data, err := json.Marshal(struct {
		Class  string         `json:"class"`
		Inputs map[string]any `json:"inputs"`
		Hidden domain.Hidden  `json:"hidden"`
	}{class, req.Inputs, req.Hidden})
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint %s: %w", class, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
