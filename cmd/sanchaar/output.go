package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sanchaar/internal/content"
)

// emit writes v as indented JSON when --json is set; otherwise render draws
// the human view onto the command's stdout.
func (c *commandContext) emit(cmd *cobra.Command, v any, render func(out io.Writer) error) error {
	out := cmd.OutOrStdout()
	if !c.jsonOutput() {
		return render(out)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *commandContext) emitItem(cmd *cobra.Command, item *content.Item) error {
	return c.emit(cmd, item, func(out io.Writer) error {
		_, err := fmt.Fprint(out, renderItem(item, shouldColorize(out)))
		return err
	})
}
