// Package schemas embeds the JSON schemas for wire messages and imported
// layouts so servers can validate without a filesystem lookup.
package schemas

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed *.schema.json
var FS embed.FS

// URL is the resource name a schema is registered under.
func URL(name string) string { return "mem://schemas/" + name }

// Compile builds the named schema with every embedded schema registered, so
// cross-file $ref resolves without touching disk.
func Compile(name string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".schema.json") {
			continue
		}
		b, err := FS.ReadFile(e.Name())
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(URL(e.Name()), bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
	}
	return c.Compile(URL(name))
}
