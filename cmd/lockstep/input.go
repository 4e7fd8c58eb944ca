package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nicolagi/lockstep/internal/change"
)

// envelope is the interchange document produced by the comparison
// engine: the classified change tree plus the merged document both
// sides render from.
type envelope struct {
	Format   string          `json:"format"`
	Tree     json.RawMessage `json:"tree"`
	Document json.RawMessage `json:"document"`
}

// loadInput parses one interchange envelope. The tree and the merged
// document are independent payloads, they decode concurrently.
func loadInput(ctx context.Context, r io.Reader) (*change.Node, any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "loadInput")
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, errors.Wrap(err, "loadInput")
	}
	if len(env.Tree) == 0 {
		return nil, nil, errors.New("loadInput: envelope carries no tree")
	}
	if env.Format != "" && env.Format != "json" {
		log.WithField("format", env.Format).Warning("Unknown document format, rendering anyway")
	}
	var (
		root *change.Node
		doc  any
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		root, err = change.Decode(env.Tree)
		return err
	})
	g.Go(func() error {
		if len(env.Document) == 0 {
			return nil
		}
		return errors.Wrap(json.Unmarshal(env.Document, &doc), "loadInput")
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return root, doc, nil
}

func loadInputFile(ctx context.Context, path string) (*change.Node, any, error) {
	if path == "-" {
		return loadInput(ctx, os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "loadInputFile")
	}
	defer func() { _ = f.Close() }()
	return loadInput(ctx, f)
}
