// Command treefpe encrypts or decrypts a JSON document, preserving its
// shape: numbers stay numbers, strings stay strings, object and array
// structure is unchanged (unless collapsed past --max-depth). The result is
// written to stdout, or back to the input file with --in-place.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/vdparikh/treefpe/log"
	"github.com/vdparikh/treefpe/tree"
)

func main() {
	app := &cli.App{
		Name:      "treefpe",
		Usage:     "format-preserving encryption for JSON documents",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "encryption/decryption password",
			},
			&cli.StringFlag{
				Name:    "password-file",
				Aliases: []string{"k"},
				Usage:   "path to a file containing the password",
			},
			&cli.BoolFlag{
				Name:    "decrypt",
				Aliases: []string{"d"},
				Usage:   "decrypt rather than encrypt",
			},
			&cli.BoolFlag{
				Name:    "include-keys",
				Aliases: []string{"K"},
				Usage:   "encrypt/decrypt object keys as well as values",
			},
			&cli.UintFlag{
				Name:    "max-depth",
				Aliases: []string{"L"},
				Usage:   "maximum recursion depth to preserve before collapsing a subtree (0 = unbounded)",
			},
			&cli.BoolFlag{
				Name:    "in-place",
				Aliases: []string{"i"},
				Usage:   "write the result back to the input file instead of stdout",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "treefpe:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := log.New(os.Stderr, log.InfoLevel)

	inputPath := c.Args().First()
	inPlace := c.Bool("in-place")
	if inPlace && (inputPath == "" || inputPath == "-") {
		return cli.Exit("--in-place requires a file argument, not stdin", 2)
	}

	doc, err := readInput(inputPath)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	password, err := resolvePassword(c.String("password"), c.String("password-file"))
	if err != nil {
		return cli.Exit(err.Error(), exitCodeFor(err))
	}

	eng, err := tree.New().
		WithIncludeKeys(c.Bool("include-keys")).
		WithMaxDepth(uint32(c.Uint("max-depth"))).
		WithPassword(password)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}

	if c.Bool("decrypt") {
		err = eng.Decrypt(&doc)
	} else {
		err = eng.Encrypt(&doc)
	}
	if err != nil {
		logger.Error(err).Message("operation failed")
		return cli.Exit(err.Error(), 1)
	}

	if inPlace {
		if err := writeInPlace(inputPath, doc); err != nil {
			logger.Error(err).Message("writing result back to input file failed")
			return cli.Exit(err.Error(), 1)
		}
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// writeInPlace serializes doc and replaces path's contents with it,
// writing to a sibling temp file first and renaming over path so a failure
// partway through never leaves the original file truncated or corrupt.
func writeInPlace(path string, doc any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// readInput loads a JSON document from path, "-" for stdin, or, if path is
// empty, from stdin provided it is not a terminal (treefpe never blocks
// waiting on interactive stdin for the document itself).
func readInput(path string) (any, error) {
	var r io.Reader
	switch {
	case path != "" && path != "-":
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("file not found: %s", path)
			}
			return nil, err
		}
		defer f.Close()
		r = f
	case path == "-":
		r = os.Stdin
	default:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("no input provided (expected a file argument or piped stdin)")
		}
		r = os.Stdin
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse input as JSON: %w", err)
	}
	return doc, nil
}

var (
	errPasswordConflict = errors.New("unsure whether to use -p or -k: pass only one")
	errPasswordMismatch = errors.New("passwords did not match")
)

// resolvePassword implements the three ways to supply a password: directly,
// from a file, or (when neither is given) an interactive, confirmed prompt.
func resolvePassword(direct, file string) (string, error) {
	switch {
	case direct != "" && file != "":
		return "", errPasswordConflict
	case direct != "":
		return direct, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read password file: %w", err)
		}
		return string(data), nil
	default:
		return promptPassword()
	}
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Re-type: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(pw) != string(confirm) {
		return "", errPasswordMismatch
	}
	return string(pw), nil
}

func exitCodeFor(err error) int {
	if errors.Is(err, errPasswordMismatch) {
		return 1
	}
	return 2
}
