package backend

import (
	"encoding/json"
	"fmt"
	"os"
)

// loadLabels reads the class label table. Its order is the ground truth for
// class indices — it was fixed at training time and is never re-derived.
func loadLabels(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read class labels: %w", err)
	}

	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, fmt.Errorf("parse class labels: %w", err)
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("class label table is empty")
	}

	return labels, nil
}
