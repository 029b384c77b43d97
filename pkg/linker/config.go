package linker

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig overlays the YAML link configuration at path onto args.
// Keys that are absent keep their current value; unknown keys are errors.
func LoadConfig(path string, args *ContextArgs) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return ParseConfig(contents, args)
}

func ParseConfig(contents []byte, args *ContextArgs) error {
	decoder := yaml.NewDecoder(bytes.NewReader(contents))
	decoder.KnownFields(true)
	if err := decoder.Decode(args); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
