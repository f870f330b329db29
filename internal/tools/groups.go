package tools

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// groupsFile is the on-disk shape of a tool groups file:
//
//	groups:
//	  files: [read_file, write_file, list_dir]
//	  shell: [run_command]
type groupsFile struct {
	Groups map[string][]string `yaml:"groups"`
}

// LoadGroups reads named tool groups from a YAML file into the registry.
func (r *Registry) LoadGroups(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read groups file: %w", err)
	}

	var f groupsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse groups file %s: %w", path, err)
	}

	for name, members := range f.Groups {
		r.DefineGroup(name, members)
	}
	return nil
}
