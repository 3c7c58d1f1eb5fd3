package main

import (
	"context"
	"errors"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/tiptap"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/preview"
)

func formatDocument(ctx context.Context, doc *edtypes.Node, to string, asJSON bool) ([]byte, error) {
	if asJSON {
		return tiptap.Serialize(doc)
	}
	f, err := preview.NewFormatter(to)
	if err != nil {
		return nil, err
	}
	out, err := f.Format(ctx, editor.RenderHTML(doc))
	if err != nil {
		return nil, err
	}
	return []byte(out + "\n"), nil
}

func runFormat(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("exactly one FILE is expected")
	}
	doc, err := loadFile(cmd.Args().First())
	if err != nil {
		return err
	}

	out, err := formatDocument(ctx, doc, cmd.String("to"), cmd.Bool("json"))
	if err != nil {
		return err
	}
	if dst := cmd.String("out"); dst != "" {
		return os.WriteFile(dst, out, 0o644)
	}
	_, err = os.Stdout.Write(out)
	return err
}
