package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/forms"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/session"
)

// checkEntry - результат проверки одной интерактивной ноды.
type checkEntry struct {
	session.NodeInfo
	Errors []forms.FieldError `json:"errors,omitempty"`
}

func checkDocument(doc *edtypes.Node) (entries []checkEntry, invalid int) {
	for _, node := range session.ListNodes(doc) {
		entry := checkEntry{NodeInfo: node}
		if err := forms.ValidateKind(node.Kind, node.Attrs); err != nil {
			var ve *forms.ValidationError
			if errors.As(err, &ve) {
				entry.Errors = ve.Fields
			} else {
				entry.Errors = []forms.FieldError{{Message: err.Error()}}
			}
			invalid++
		}
		entries = append(entries, entry)
	}
	return entries, invalid
}

func writeReport(w io.Writer, entries []checkEntry) {
	for _, e := range entries {
		status := "ok"
		if len(e.Errors) > 0 {
			status = "invalid"
		}
		fmt.Fprintf(w, "%6d  %-9s %-10s %-8s %q\n", e.Pos, e.Kind, e.Attrs.Get(edtypes.AttrTargetAction), status, e.Text)
		for _, fe := range e.Errors {
			fmt.Fprintf(w, "        %s: %s\n", fe.Field, fe.Message)
		}
	}
}

func runCheck(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("exactly one FILE is expected")
	}
	doc, err := loadFile(cmd.Args().First())
	if err != nil {
		return err
	}

	entries, invalid := checkDocument(doc)
	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return err
		}
	} else {
		writeReport(os.Stdout, entries)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d interactive nodes are invalid", invalid, len(entries))
	}
	return nil
}
