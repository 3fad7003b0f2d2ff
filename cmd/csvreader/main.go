package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"csvreader"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const outputThreshold = 64 * 1024

type ReaderFlags struct {
	Delimiter   string `short:"d" env:"CSVREADER_DELIMITER" help:"Field delimiter, one or more characters (default comma)."`
	Qualifier   string `short:"q" env:"CSVREADER_QUALIFIER" help:"Text qualifier, one or more characters (default double quote)."`
	RowMarker   string `short:"r" env:"CSVREADER_ROW_MARKER" help:"End of row marker. Unset means LF or CRLF."`
	StartAtLine int    `short:"s" env:"CSVREADER_START_AT_LINE" default:"0" help:"Number of leading rows to skip."`
	ChunkSize   int    `env:"CSVREADER_CHUNK_SIZE" help:"Bytes read from the file at once. Unset uses the library default."`
}

func (f ReaderFlags) newReader(logger *log.Logger) (*csvreader.Reader, error) {
	return csvreader.New(csvreader.Settings{
		Delimiter:      f.Delimiter,
		TextQualifier:  f.Qualifier,
		EndOfRowMarker: f.RowMarker,
		StartAtLine:    f.StartAtLine,
		ChunkSize:      f.ChunkSize,
		Logger:         logger,
	})
}

type parseCmd struct {
	ReaderFlags
	File string `arg:"" help:"Delimited text file to read."`
}

func (c *parseCmd) Run(logger *log.Logger) error {
	reader, err := c.newReader(logger)
	if err != nil {
		return err
	}
	return printRows(reader, c.File, os.Stdout, logger)
}

func printRows(reader *csvreader.Reader, path string, out io.Writer, logger log.FieldLogger) error {
	rows, err := reader.ParseFile(path)
	if err != nil {
		return err
	}
	defer rows.Close()

	output := newSink(out, outputThreshold)
	for row, err := range rows.All() {
		if err != nil {
			return err
		}
		if err := output.writeRow(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := output.flush(); err != nil {
		return fmt.Errorf("writing row: %w", err)
	}

	logger.WithFields(log.Fields{
		"path":   path,
		"rows":   rows.Stats().Rows,
		"writes": output.getNumberOfWrites(),
		"bytes":  output.getBytesWritten(),
	}).Debug("Rows written")
	return nil
}

type benchCmd struct {
	ReaderFlags
	Iterations int    `short:"n" default:"10" help:"Number of timed parses. The first one only warms up."`
	File       string `arg:"" help:"Delimited text file to read."`
}

func (c *benchCmd) Run(logger *log.Logger) error {
	reader, err := c.newReader(logger)
	if err != nil {
		return err
	}

	run := uuid.New().String()
	var total time.Duration
	var stats csvreader.Stats
	for i := 0; i < c.Iterations; i++ {
		elapsed, parsed, err := timeParse(reader, c.File)
		if err != nil {
			return err
		}
		logger.WithFields(log.Fields{
			"run":       run,
			"iteration": i,
			"elapsed":   elapsed,
			"rows":      parsed.Rows,
		}).Debug("Parse finished")
		if i != 0 {
			total += elapsed
			stats = stats.Add(parsed)
		}
	}

	logger.WithFields(log.Fields{
		"run":   run,
		"rows":  stats.Rows,
		"bytes": stats.Bytes,
		"reads": stats.Reads,
	}).Info("Benchmark finished")
	fmt.Printf("Reader: %v\n", total.Seconds())
	return nil
}

func timeParse(reader *csvreader.Reader, path string) (time.Duration, csvreader.Stats, error) {
	start := time.Now()
	rows, err := reader.ParseFile(path)
	if err != nil {
		return 0, csvreader.Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
	}
	return time.Since(start), rows.Stats(), rows.Err()
}

type cli struct {
	LogLevel string `short:"l" default:"info" env:"CSVREADER_LOG_LEVEL" help:"Logging level (trace, debug, info, etc)."`
	JSONLog  bool   `short:"j" help:"JSON logger formatter."`

	Parse parseCmd `cmd:"" help:"Print the rows of a file as JSON arrays, one per line."`
	Bench benchCmd `cmd:"" help:"Time repeated parses of a file."`
}

func main() {
	var args cli
	ctx := kong.Parse(&args,
		kong.Name("csvreader"),
		kong.Description("Streaming reader for delimited text files."),
		kong.UsageOnError(),
	)

	logger, err := newLogger(args.LogLevel, args.JSONLog)
	ctx.FatalIfErrorf(err)

	ctx.FatalIfErrorf(ctx.Run(logger))
}

func newLogger(loggingLevel string, json bool) (*log.Logger, error) {
	logger := log.New()
	logger.SetOutput(os.Stderr)

	if json {
		logger.SetFormatter(&log.JSONFormatter{})
	}

	level, err := log.ParseLevel(loggingLevel)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	return logger, nil
}
