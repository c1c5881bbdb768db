package commands

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/satchelhq/satchel/errors"
)

// JSONOutput switches entity rendering from YAML to JSON. Bound to the
// global --json flag.
var JSONOutput bool

// render prints an entity to stdout in the selected format.
func render(v interface{}) error {
	if JSONOutput {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to render JSON")
		}
		fmt.Println(string(out))
		return nil
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to render YAML")
	}
	fmt.Print(string(out))
	return nil
}
