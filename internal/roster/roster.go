// Package roster parses uploaded task roster documents. A roster is a YAML
// file containing a flat list of task description strings.
package roster

import (
	"strings"

	"choresbot/internal/domain"

	"gopkg.in/yaml.v3"
)

// File extensions accepted for roster uploads.
var allowedExtensions = []string{".yaml", ".yml"}

// AllowedFile reports whether the uploaded document's name has a roster
// extension. The check runs before the file is downloaded.
func AllowedFile(filename string) bool {
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

// Parse decodes roster bytes into candidate tasks, one per description line,
// in document order. Anything that is not a YAML list of plain strings fails
// with ErrRosterFormat. Descriptions are taken verbatim: no trimming, no case
// folding, no deduplication.
func Parse(data []byte) ([]domain.Task, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, domain.ErrRosterFormat
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.SequenceNode {
		return nil, domain.ErrRosterFormat
	}

	entries := node.Content[0].Content
	tasks := make([]domain.Task, 0, len(entries))
	for _, entry := range entries {
		if entry.Kind != yaml.ScalarNode || entry.Tag != "!!str" {
			return nil, domain.ErrRosterFormat
		}
		tasks = append(tasks, domain.Task{Description: entry.Value})
	}
	return tasks, nil
}
