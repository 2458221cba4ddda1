// wadtool is a CLI utility for inspecting GoldSrc WAD3 texture packages.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/Faultbox/map2prop/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "extract", "x":
		cmdExtract(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wadtool - GoldSrc WAD3 texture package utility

Usage:
  wadtool <command> [options]

Commands:
  info <file.wad>                       Show package information
  list <file.wad> [pattern]             List textures (optional glob pattern)
  extract <file.wad> <name> [output]    Extract texture(s) as 8-bit BMP

Examples:
  wadtool info halflife.wad
  wadtool list -l halflife.wad "{*"
  wadtool extract halflife.wad "c1a0_*" ./textures`)
}

func open(path string) *formats.WAD {
	wad, err := formats.ParseWAD3File(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return wad
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: wadtool info <file.wad>")
		os.Exit(1)
	}

	wad := open(args[0])

	var diskSize int64
	compressed, masked := 0, 0
	typeCount := make(map[uint8]int)
	for _, e := range wad.Entries {
		diskSize += int64(e.DiskSize)
		typeCount[e.Type]++
		if e.Compressed {
			compressed++
		}
		if e.Type == formats.WADTypeMipTex && strings.HasPrefix(e.Name, "{") {
			masked++
		}
	}

	fmt.Printf("Package:    %s\n", args[0])
	fmt.Printf("Lumps:      %d\n", len(wad.Entries))
	fmt.Printf("Textures:   %d (%d masked)\n", len(wad.Textures()), masked)
	fmt.Printf("Compressed: %d\n", compressed)
	fmt.Printf("Size:       %.2f MB\n", float64(diskSize)/(1024*1024))
	fmt.Println()
	fmt.Println("Lumps by type:")

	types := make([]int, 0, len(typeCount))
	for t := range typeCount {
		types = append(types, int(t))
	}
	sort.Ints(types)
	for _, t := range types {
		fmt.Printf("  0x%02x %d\n", t, typeCount[uint8(t)])
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N textures (0 = all)")
	long := fs.Bool("l", false, "Show texture dimensions")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: wadtool list [-n N] [-l] <file.wad> [pattern]")
		os.Exit(1)
	}

	wad := open(fs.Arg(0))
	names := wad.Textures()
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, name := range names {
		if pattern != "" && !matches(pattern, name) {
			continue
		}
		if *long {
			tex, err := wad.Texture(name)
			if err != nil {
				fmt.Printf("%-16s %v\n", name, err)
			} else {
				fmt.Printf("%-16s %dx%d\n", name, tex.Width, tex.Height)
			}
		} else {
			fmt.Println(name)
		}
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d textures matched)\n", count)
	}
}

func cmdExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: wadtool extract <file.wad> <name|pattern> [output_dir]")
		os.Exit(1)
	}

	wad := open(fs.Arg(0))
	pattern := strings.ToLower(fs.Arg(1))
	outputDir := "."
	if fs.NArg() > 2 {
		outputDir = fs.Arg(2)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	// Single texture extraction
	if !strings.ContainsAny(pattern, "*?[") {
		if !wad.Has(pattern) {
			fmt.Fprintf(os.Stderr, "Texture not found: %s\n", fs.Arg(1))
			os.Exit(1)
		}
		if err := extract(wad, pattern, outputDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	extracted := 0
	for _, name := range wad.Textures() {
		if !matches(pattern, name) {
			continue
		}
		if err := extract(wad, name, outputDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error extracting %s: %v\n", name, err)
			continue
		}
		extracted++
	}
	fmt.Fprintf(os.Stderr, "\nExtracted %d textures\n", extracted)
}

func extract(wad *formats.WAD, name, outputDir string) error {
	tex, err := wad.Texture(name)
	if err != nil {
		return err
	}

	outputPath := filepath.Join(outputDir, strings.ToLower(tex.Name)+".bmp")
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, tex.Image); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("Extracted: %s (%dx%d)\n", outputPath, tex.Width, tex.Height)
	return nil
}

func matches(pattern, name string) bool {
	lower := strings.ToLower(name)
	matched, _ := filepath.Match(pattern, lower)
	return matched || strings.Contains(lower, pattern)
}
