package threat

import (
	"bytes"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type feedFile struct {
	Feeds []Feed `yaml:"feeds" json:"feeds"`
}

// LoadFeeds reads the feed list from a JSON or YAML file and returns the enabled feeds in
// file order.
func LoadFeeds(path string) ([]Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds config: %w", err)
	}
	var file feedFile
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("parse feeds config %s: %w", path, err)
	}
	enabled := make([]Feed, 0, len(file.Feeds))
	for _, f := range file.Feeds {
		if f.IsEnabled() {
			enabled = append(enabled, f)
		}
	}
	return enabled, nil
}
