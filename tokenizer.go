package main

import (
	"fmt"
	"os"
	"path/filepath"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// defaultEncoding is the vocabulary the commercial text APIs this tool
// estimates for actually bill against.
const defaultEncoding = "cl100k_base"

// Tokenizer turns text into a token count against a fixed vocabulary.
type Tokenizer interface {
	CountTokens(text string) int
	Name() string
	Close()
}

// --- Tiktoken backend ---

type tiktokenCounter struct {
	name string
	enc  *tiktoken.Tiktoken
}

func newTiktokenCounter(encoding string) (*tiktokenCounter, error) {
	// The offline loader serves the BPE dictionaries from embedded data, so
	// a fresh machine never reaches for the network.
	tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}
	return &tiktokenCounter{name: encoding, enc: enc}, nil
}

func (c *tiktokenCounter) CountTokens(text string) int {
	// EncodeOrdinary treats special-token text as ordinary input, which is
	// what file contents are.
	return len(c.enc.EncodeOrdinary(text))
}

func (c *tiktokenCounter) Name() string { return c.name }

func (c *tiktokenCounter) Close() {}

// --- HuggingFace tokenizer.json backend ---

type hfCounter struct {
	name string
	tk   *hf.Tokenizer
}

func newHFCounter(path string) (*hfCounter, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer file %s: %w", path, err)
	}
	return &hfCounter{name: filepath.Base(path), tk: tk}, nil
}

func (c *hfCounter) CountTokens(text string) int {
	en, err := c.tk.EncodeSingle(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: tokenizer failed to encode text: %v\n", err)
		return 0
	}
	return len(en.Tokens)
}

func (c *hfCounter) Name() string { return c.name }

func (c *hfCounter) Close() {}

// newTokenizer builds the counting backend the options select: a local
// HuggingFace tokenizer file when one is given, tiktoken otherwise.
func newTokenizer(opts options) (Tokenizer, error) {
	if opts.tokenizerFile != "" {
		return newHFCounter(opts.tokenizerFile)
	}
	return newTiktokenCounter(opts.encoding)
}
