package main

import (
	"context"
	"io"
	"net"
)

// Dependencies holds what every command needs.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	Listening func(addr net.Addr)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP server"`
	Scrape  ScrapeCmd  `cmd:"" help:"Scrape the listing once and store the results"`
	Extract ExtractCmd `cmd:"" help:"Extract records from local HTML without storing them"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Port string `help:"Listen port (overrides PORT)"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL string `help:"Listing URL (overrides SCRAPE_URL)"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	File      string `arg:"" help:"HTML file to read, or - for stdin"`
	Home      string `default:"https://www.reddit.com" help:"Base URL prefixed to links"`
	Selectors string `short:"s" type:"existingfile" help:"YAML selector file"`
	All       bool   `help:"Print incomplete records too"`
}
