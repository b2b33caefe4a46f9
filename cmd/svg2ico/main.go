// Command svg2ico converts an SVG source image into a multi-size Windows
// ICO favicon.
package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/icoconv"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	input := flag.String("input", "public/favicon-2.svg", "path to the source SVG file")
	output := flag.String("output", "public/favicon.ico", "path for the generated ICO file")
	sizesFlag := flag.String("sizes", "16,32,48", "comma-separated icon sizes in pixels")
	flag.Parse()

	sizes, err := parseSizes(*sizesFlag)
	if err != nil {
		slog.Error("Invalid sizes flag", "sizes", *sizesFlag, "error", err)
		os.Exit(1)
	}

	if err := icoconv.Convert(*input, *output, sizes); err != nil {
		slog.Error("Conversion failed", "input", *input, "output", *output, "error", err)
		os.Exit(1)
	}
	slog.Info("Favicon generated", "input", *input, "output", *output, "sizes", sizes)
}

func parseSizes(raw string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		size, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}
