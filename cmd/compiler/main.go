package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/dqn/midi"
	"github.com/dqn/midi/parser/scorefile"
	"github.com/dqn/midi/smf"
	"github.com/dqn/midi/verify"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"
)

var logger *log.Logger

func main() {
	logger = newLogger(os.Stdout)

	// Get the current working directory.
	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatalf("failed to get current working directory: %v", err)
	}

	var (
		outputPath string
		hexDump    bool
		dump       bool
		check      bool
		title      string
		copyright  string
	)
	pflag.StringVarP(&outputPath, "output", "o", "", "output file (default: the score path with a .mid extension)")
	pflag.BoolVarP(&hexDump, "hex", "x", false, "print the compiled file as comma-separated hex bytes")
	pflag.BoolVarP(&dump, "dump", "d", false, "dump the MIDI document before encoding")
	pflag.BoolVarP(&check, "verify", "v", false, "reload the compiled file with independent MIDI readers")
	pflag.StringVarP(&title, "title", "t", "", "track name, overriding the score's title")
	pflag.StringVarP(&copyright, "copyright", "c", "", "copyright notice, overriding the score's copyright")
	pflag.Parse()

	// Get the path of the score text file.
	path, err := choosePath(cwd, pflag.Args())
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Printf("user cancelled the file dialog")
			os.Exit(1)
		}
		logger.Fatalf("failed to determine file path: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Fatalf("error opening file: %v", err)
	}
	defer file.Close()

	p := scorefile.NewParser(file, logger)
	score, err := p.Parse()
	if err != nil {
		logger.Fatalf("parse error: %v", err)
	}
	if pflag.CommandLine.Changed("title") {
		score.TrackName = title
	}
	if pflag.CommandLine.Changed("copyright") {
		score.Copyright = copyright
	}

	doc, err := midi.Build(*score)
	if err != nil {
		logger.Fatalf("compile error: %v", err)
	}

	if dump {
		spew.Dump(doc)
	}
	fmt.Println(doc)

	data, err := doc.Encode()
	if err != nil {
		logger.Fatalf("compile error: %v", err)
	}

	if hexDump {
		fmt.Println(smf.HexDump(data))
	}

	if check {
		report, err := verify.Check(data)
		if err != nil {
			logger.Fatalf("verification failed: %v", err)
		}
		logger.Printf("verified: %v", report)
	}

	// Write to a .mid file in the same directory as the source file, unless told otherwise.
	if outputPath == "" {
		outputPath = outputPathFor(path)
	}
	err = os.WriteFile(outputPath, data, 0o644)
	if err != nil {
		logger.Fatalf("error writing output file: %v", err)
	}
	logger.Printf("wrote %d bytes to %s", len(data), outputPath)
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "INFO: ", log.Ldate|log.Ltime)
}

// outputPathFor returns the path of the .mid file written next to the score at path.
func outputPathFor(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".mid"
}

// choosePath returns the file path either from the command-line args
// or from an interactive file dialog.
func choosePath(cwd string, args []string) (string, error) {
	// If an argument was passed to the program, use it.
	if len(args) > 0 {
		path := args[0]
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot get absolute path: %w", err)
		}
		if err := validatePath(absPath); err != nil {
			return "", fmt.Errorf("passed argument is not a valid path: %w", err)
		}
		return absPath, nil
	}

	// Otherwise open the file dialog.
	path, err := dialog.
		File().
		Title("Open score text file").
		Filter("Score text files (*.txt)", "txt").
		SetStartDir(cwd).
		Load()
	if err != nil {
		// Propagate the error. Caller will check for dialog.ErrCancelled.
		return "", err
	}

	// Check for empty path just in case.
	if path == "" {
		return "", dialog.ErrCancelled
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot get absolute path: %w", err)
	}
	if err := validatePath(absPath); err != nil {
		return "", fmt.Errorf("dialog selection invalid: %w", err)
	}
	return absPath, nil
}

// validatePath performs simple checks to verify if a file exists or not.
func validatePath(p string) error {
	if strings.ToLower(filepath.Ext(p)) != ".txt" {
		return fmt.Errorf("file must have .txt extension")
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("cannot stat file: %w", err)
	}
	return nil
}
