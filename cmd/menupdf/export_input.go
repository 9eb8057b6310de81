package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	menupdf "github.com/alnah/go-menupdf"
	"github.com/alnah/go-menupdf/internal/chip"
)

// Sentinel errors for input discovery and decoding.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input file")
	ErrNoMenu             = errors.New("no menu found in input")
	ErrInvalidExtension   = errors.New("file must have .json or .txt extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// stdinName is the positional argument that reads one input from stdin.
const stdinName = "-"

// maxInputSize bounds a single input file.
const maxInputSize = 10 << 20

// inputKind tells decodeInput how to read a file.
type inputKind int

const (
	kindJSON  inputKind = iota // envelope, menu_chip or raw payload
	kindReply                  // chat reply with a <MENU> block
	kindSniff                  // stdin: JSON if it starts with '{'
)

// inputFile is one discovered input.
type inputFile struct {
	Path string
	Kind inputKind
}

// discoverInputs expands positional arguments into input files.
// Directories are walked for .json and .txt files; explicit files must
// carry one of those extensions.
func discoverInputs(args []string) ([]inputFile, error) {
	if len(args) == 0 {
		return nil, ErrNoInput
	}

	var files []inputFile
	for _, arg := range args {
		if arg == stdinName {
			files = append(files, inputFile{Path: stdinName, Kind: kindSniff})
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			kind, err := kindFor(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, inputFile{Path: arg, Kind: kind})
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() {
				return nil
			}
			kind, err := kindFor(path)
			if err != nil {
				return nil // not an input, skip
			}
			files = append(files, inputFile{Path: path, Kind: kind})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// kindFor maps a file extension to an input kind.
func kindFor(path string) (inputKind, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return kindJSON, nil
	case ".txt":
		return kindReply, nil
	default:
		return 0, fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
}

// readInput reads an input file, or stdin for "-".
func readInput(f inputFile, stdin io.Reader) ([]byte, error) {
	var r io.Reader = stdin
	if f.Path != stdinName {
		file, err := os.Open(f.Path) // #nosec G304 -- discovered path
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		defer file.Close()
		r = file
	}

	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	if len(data) > maxInputSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrReadInput, f.Path, maxInputSize)
	}
	return data, nil
}

// decodeInput turns file content into a document. Title and date range
// are left empty when the input does not carry them.
//
// JSON inputs are tried as, in order:
//   - an envelope {"title", "dateRange", "data": {...}}
//   - a menu_chip object
//   - a raw payload with "dias" or "menu.dias"
func decodeInput(content []byte, kind inputKind) (menupdf.MenuDocument, error) {
	if kind == kindSniff {
		kind = kindReply
		if bytes.HasPrefix(bytes.TrimSpace(content), []byte("{")) {
			kind = kindJSON
		}
	}

	if kind == kindReply {
		reply, ok := menupdf.ParseChatReply(string(content))
		if !ok {
			return menupdf.MenuDocument{}, fmt.Errorf("%w: no <MENU> block of type %s", ErrNoMenu, chip.ChipType)
		}
		return reply.Document, nil
	}

	if !gjson.ValidBytes(content) {
		return menupdf.MenuDocument{}, fmt.Errorf("%w: invalid JSON", ErrNoMenu)
	}
	root := gjson.ParseBytes(content)

	if data := root.Get("data"); data.IsObject() {
		return menupdf.MenuDocument{
			Title:     root.Get("title").String(),
			DateRange: root.Get("dateRange").String(),
			Data:      []byte(data.Raw),
		}, nil
	}

	if c, ok := chip.Decode(content); ok {
		return menupdf.MenuDocument{Title: c.Title, DateRange: c.DateRange, Data: c.Payload}, nil
	}

	if root.Get("dias").IsArray() || root.Get("menu.dias").IsArray() {
		return menupdf.MenuDocument{Data: content}, nil
	}

	return menupdf.MenuDocument{}, fmt.Errorf("%w: expected \"data\", \"dias\" or a %s object", ErrNoMenu, chip.ChipType)
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > menupdf.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, menupdf.MaxPoolSize)
	}
	return nil
}

// htmlOutputPath returns the HTML path corresponding to a PDF path.
func htmlOutputPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".html"
}
