package scoreclient

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Default flag values.
const (
	defaultBaseURL = "http://localhost:9080"
	defaultTimeout = 2 * time.Minute
)

// ErrUsage reports invalid command line input.
var ErrUsage = errors.New("usage")

// Config holds the parsed command line.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Space     string
	Network   string
	Snapshot  *uint64
	Options   json.RawMessage
	Addresses []string
}

// ParseArgs parses args into a Config. Addresses come from -addresses, the
// file named by -file ("-" for stdin), and positional arguments, in that order.
func ParseArgs(args []string, stdin io.Reader) (*Config, error) {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		baseURL   = fs.String("url", defaultBaseURL, "Base URL of the service")
		timeout   = fs.Duration("timeout", defaultTimeout, "HTTP request timeout")
		space     = fs.String("space", "", "Space identifier passed through to the server")
		network   = fs.String("network", "1", "Network identifier passed through to the server")
		snapshot  = fs.String("snapshot", "latest", "Block height or \"latest\"")
		options   = fs.String("options", "", "Strategy options as a JSON object")
		addresses = fs.String("addresses", "", "Comma separated addresses")
		file      = fs.String("file", "", "File with one address per line, - for stdin")
	)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	cfg := &Config{
		BaseURL: *baseURL,
		Timeout: *timeout,
		Space:   *space,
		Network: *network,
	}

	if *snapshot != "" && *snapshot != "latest" {
		h, err := strconv.ParseUint(*snapshot, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: snapshot %q is not a block number", ErrUsage, *snapshot)
		}
		cfg.Snapshot = &h
	}

	if *options != "" {
		if !json.Valid([]byte(*options)) {
			return nil, fmt.Errorf("%w: options is not valid JSON", ErrUsage)
		}
		cfg.Options = json.RawMessage(*options)
	}

	if *addresses != "" {
		cfg.Addresses = append(cfg.Addresses, splitList(*addresses)...)
	}
	if *file != "" {
		addrs, err := readFile(*file, stdin)
		if err != nil {
			return nil, err
		}
		cfg.Addresses = append(cfg.Addresses, addrs...)
	}
	cfg.Addresses = append(cfg.Addresses, fs.Args()...)
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("%w: no addresses given", ErrUsage)
	}
	return cfg, nil
}

func readFile(name string, stdin io.Reader) ([]string, error) {
	if name == "-" {
		return ReadAddresses(stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open addresses file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadAddresses(f)
}

// Run parses args, posts the request and writes the scores as indented JSON.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := ParseArgs(args, stdin)
	if err != nil {
		return err
	}

	res, err := NewClient(cfg.BaseURL, cfg.Timeout).Scores(ctx, Request{
		Space:     cfg.Space,
		Network:   cfg.Network,
		Addresses: cfg.Addresses,
		Options:   cfg.Options,
		Snapshot:  cfg.Snapshot,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// Usage writes the command help to w.
func Usage(w io.Writer) {
	_, _ = io.WriteString(w, `score: compute LandWorks voting power through a landpower server

Usage:
  score [flags] [address ...]

Flags:
  -url       Base URL of the service (default http://localhost:9080)
  -addresses Comma separated addresses
  -file      File with one address per line, - for stdin
  -snapshot  Block height or "latest" (default latest)
  -options   Strategy options as a JSON object
  -space     Space identifier
  -network   Network identifier (default 1)
  -timeout   HTTP request timeout (default 2m)
`)
}
